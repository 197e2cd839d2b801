package domain

import "time"

// ApplicationStatus tracks where an application sits in the review pipeline.
// Admins may set arbitrary values during review; these are the values the
// lifecycle itself produces.
type ApplicationStatus string

const (
	StatusSubmitted   ApplicationStatus = "Submitted"
	StatusUnderReview ApplicationStatus = "Under Review"
	StatusApproved    ApplicationStatus = "Approved"
	StatusRejected    ApplicationStatus = "Rejected"
)

// Application is the aggregate for a passport application. UserID is
// immutable after creation.
type Application struct {
	ID           int64
	UserID       int64
	FullName     string
	DateOfBirth  time.Time
	Address      string
	Nationality  string
	PassportType string
	Status       ApplicationStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
