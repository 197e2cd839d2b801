package events

import (
	"time"

	"github.com/spec-kit/passport-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApplicationSubmitted EventType = "application_submitted"
	EventAppointmentScheduled EventType = "appointment_scheduled"
	EventPaymentRecorded      EventType = "payment_recorded"
	EventStatusChanged        EventType = "status_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a lifecycle event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	ApplicationID int64       `json:"application_id"`
	Actor         Actor       `json:"actor"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// ApplicationSubmittedPayload payload.
type ApplicationSubmittedPayload struct {
	PassportType  string `json:"passport_type"`
	DocumentCount int    `json:"document_count"`
	SkippedFiles  int    `json:"skipped_files"`
}

// AppointmentScheduledPayload payload.
type AppointmentScheduledPayload struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

// PaymentRecordedPayload payload.
type PaymentRecordedPayload struct {
	Amount        float64              `json:"amount"`
	Method        string               `json:"method"`
	Status        domain.PaymentStatus `json:"status"`
	TransactionID string               `json:"transaction_id"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.ApplicationStatus `json:"old_status"`
	NewStatus domain.ApplicationStatus `json:"new_status"`
}
