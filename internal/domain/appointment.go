package domain

import "time"

// Appointment holds the single biometric appointment for an application.
// TimeOfDay is free text as entered by the applicant.
type Appointment struct {
	ID            int64
	ApplicationID int64
	Date          time.Time
	TimeOfDay     string
	Location      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
