package dto

import (
	"time"

	"github.com/spec-kit/passport-portal/internal/domain"
)

const dateLayout = "2006-01-02"

// SubmitApplicationRequest carries the application form fields. Uploads
// arrive separately as multipart files.
type SubmitApplicationRequest struct {
	FullName     string `form:"full_name" json:"full_name"`
	DateOfBirth  string `form:"dob" json:"dob"`
	Address      string `form:"address" json:"address"`
	Nationality  string `form:"nationality" json:"nationality"`
	PassportType string `form:"passport_type" json:"passport_type"`
}

// AppointmentRequest carries the scheduling form.
type AppointmentRequest struct {
	Date     string `form:"appointment_date" json:"appointment_date"`
	Time     string `form:"appointment_time" json:"appointment_time"`
	Location string `form:"location" json:"location"`
}

// PaymentRequest carries the payment form.
type PaymentRequest struct {
	Amount string `form:"amount" json:"amount"`
	Method string `form:"method" json:"method"`
}

// AdminStatusRequest carries the review form.
type AdminStatusRequest struct {
	Status string `form:"status" json:"status"`
}

// ApplicationView is the rendered application shape.
type ApplicationView struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	FullName     string    `json:"full_name"`
	DateOfBirth  string    `json:"dob"`
	Address      string    `json:"address"`
	Nationality  string    `json:"nationality"`
	PassportType string    `json:"passport_type"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// DocumentView is the rendered document shape.
type DocumentView struct {
	ID           int64     `json:"id"`
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// AppointmentView is the rendered appointment shape.
type AppointmentView struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

// PaymentView is the rendered payment shape.
type PaymentView struct {
	ID            int64      `json:"id"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	Method        string     `json:"method"`
	TransactionID string     `json:"transaction_id"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// NewApplicationView maps the domain model.
func NewApplicationView(app *domain.Application) ApplicationView {
	return ApplicationView{
		ID:           app.ID,
		UserID:       app.UserID,
		FullName:     app.FullName,
		DateOfBirth:  app.DateOfBirth.Format(dateLayout),
		Address:      app.Address,
		Nationality:  app.Nationality,
		PassportType: app.PassportType,
		Status:       string(app.Status),
		CreatedAt:    app.CreatedAt,
	}
}

// NewApplicationViews maps a listing.
func NewApplicationViews(apps []domain.Application) []ApplicationView {
	views := make([]ApplicationView, 0, len(apps))
	for i := range apps {
		views = append(views, NewApplicationView(&apps[i]))
	}
	return views
}

// NewDocumentView maps the domain model.
func NewDocumentView(doc *domain.Document) DocumentView {
	return DocumentView{
		ID:           doc.ID,
		StoredName:   doc.StoredName,
		OriginalName: doc.OriginalName,
		UploadedAt:   doc.UploadedAt,
	}
}

// NewAppointmentView maps the domain model.
func NewAppointmentView(appt *domain.Appointment) AppointmentView {
	return AppointmentView{
		ID:       appt.ID,
		Date:     appt.Date.Format(dateLayout),
		Time:     appt.TimeOfDay,
		Location: appt.Location,
	}
}

// NewPaymentView maps the domain model.
func NewPaymentView(payment *domain.Payment) PaymentView {
	return PaymentView{
		ID:            payment.ID,
		Amount:        payment.Amount,
		Status:        string(payment.Status),
		Method:        payment.Method,
		TransactionID: payment.TransactionID,
		PaidAt:        payment.PaidAt,
	}
}
