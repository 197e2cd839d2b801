package domain

import "time"

// PaymentStatus enumerates payment outcomes.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusSuccess PaymentStatus = "Success"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

// Payment holds the single fee payment for an application.
type Payment struct {
	ID            int64
	ApplicationID int64
	Amount        float64
	Status        PaymentStatus
	Method        string
	TransactionID string
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
