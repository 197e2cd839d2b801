package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/passport-portal/internal/domain"
	"github.com/spec-kit/passport-portal/internal/events"
	"github.com/spec-kit/passport-portal/internal/repository"
	"github.com/spec-kit/passport-portal/internal/storage"
	apperrors "github.com/spec-kit/passport-portal/pkg/util/errorutil"
)

// dateLayout is the single accepted calendar date format.
const dateLayout = "2006-01-02"

// DefaultFeeAmount is the fee suggested by the payment form.
const DefaultFeeAmount = 1500.0

// Caller identifies the authenticated principal for ownership checks.
type Caller struct {
	UserID int64
	Role   domain.Role
}

// BlobStore abstracts the filesystem document store for the submit flow.
type BlobStore interface {
	Store(applicationID int64, file *multipart.FileHeader) (storedName, originalName string, err error)
	Remove(storedName string) error
}

// ApplicationService orchestrates the application lifecycle: submit,
// appointment, payment, status tracking and admin review.
type ApplicationService struct {
	applications repository.ApplicationRepository
	documents    repository.DocumentRepository
	appointments repository.AppointmentRepository
	payments     repository.PaymentRepository
	store        BlobStore
	dispatcher   events.Dispatcher
	tx           repository.TxManager
	logger       *zap.Logger
}

// ApplicationDependencies bundles repositories for the service.
type ApplicationDependencies struct {
	ApplicationRepo repository.ApplicationRepository
	DocumentRepo    repository.DocumentRepository
	AppointmentRepo repository.AppointmentRepository
	PaymentRepo     repository.PaymentRepository
	Store           BlobStore
	Dispatcher      events.Dispatcher
	Tx              repository.TxManager
	Logger          *zap.Logger
}

// NewApplicationService constructs the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		applications: deps.ApplicationRepo,
		documents:    deps.DocumentRepo,
		appointments: deps.AppointmentRepo,
		payments:     deps.PaymentRepo,
		store:        deps.Store,
		dispatcher:   deps.Dispatcher,
		tx:           deps.Tx,
		logger:       logger,
	}
}

// SubmitInput carries the application form fields plus optional uploads.
type SubmitInput struct {
	FullName     string
	DateOfBirth  string
	Address      string
	Nationality  string
	PassportType string
	Files        []*multipart.FileHeader
}

// Submit creates an application owned by the caller with status Submitted
// and stores its supporting documents. A file that is disallowed or fails
// to store is skipped without aborting the submission.
func (s *ApplicationService) Submit(ctx context.Context, caller Caller, input SubmitInput) (*domain.Application, []domain.Document, error) {
	if strings.TrimSpace(input.FullName) == "" ||
		strings.TrimSpace(input.DateOfBirth) == "" ||
		strings.TrimSpace(input.Address) == "" ||
		strings.TrimSpace(input.Nationality) == "" ||
		strings.TrimSpace(input.PassportType) == "" {
		return nil, nil, apperrors.NewValidationError("All fields are required", nil)
	}

	dob, err := time.Parse(dateLayout, input.DateOfBirth)
	if err != nil {
		return nil, nil, apperrors.NewValidationError("Invalid date format", nil)
	}

	app := &domain.Application{
		UserID:       caller.UserID,
		FullName:     input.FullName,
		DateOfBirth:  dob,
		Address:      input.Address,
		Nationality:  input.Nationality,
		PassportType: input.PassportType,
		Status:       domain.StatusSubmitted,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, nil, err
	}

	docs, skipped := s.storeDocuments(ctx, app.ID, input.Files)

	s.publish(ctx, caller, events.EventApplicationSubmitted, app.ID, events.ApplicationSubmittedPayload{
		PassportType:  app.PassportType,
		DocumentCount: len(docs),
		SkippedFiles:  skipped,
	})
	return app, docs, nil
}

func (s *ApplicationService) storeDocuments(ctx context.Context, applicationID int64, files []*multipart.FileHeader) ([]domain.Document, int) {
	var docs []domain.Document
	skipped := 0

	for _, file := range files {
		if file == nil {
			continue
		}
		storedName, originalName, err := s.store.Store(applicationID, file)
		if err != nil {
			skipped++
			if errors.Is(err, storage.ErrUnsupportedType) || errors.Is(err, storage.ErrUnsafeName) {
				s.logger.Debug("skipping upload",
					zap.Int64("application_id", applicationID),
					zap.String("filename", file.Filename),
					zap.Error(err))
			} else {
				s.logger.Warn("failed to store upload",
					zap.Int64("application_id", applicationID),
					zap.String("filename", file.Filename),
					zap.Error(err))
			}
			continue
		}

		doc := &domain.Document{
			ApplicationID: applicationID,
			StoredName:    storedName,
			OriginalName:  originalName,
		}
		if err := s.documents.Create(ctx, doc); err != nil {
			skipped++
			s.logger.Warn("failed to persist document record",
				zap.Int64("application_id", applicationID),
				zap.String("stored_name", storedName),
				zap.Error(err))
			if removeErr := s.store.Remove(storedName); removeErr != nil {
				s.logger.Warn("failed to remove orphaned upload",
					zap.String("stored_name", storedName),
					zap.Error(removeErr))
			}
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, skipped
}

// Dashboard returns the caller's most recent application, or nil when none
// exists yet.
func (s *ApplicationService) Dashboard(ctx context.Context, caller Caller) (*domain.Application, error) {
	app, err := s.applications.LatestByUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return app, nil
}

// AppointmentInput carries the scheduling form fields.
type AppointmentInput struct {
	Date     string
	Time     string
	Location string
}

// ScheduleAppointment upserts the single appointment for the application.
// The application status is not changed.
func (s *ApplicationService) ScheduleAppointment(ctx context.Context, caller Caller, applicationID int64, input AppointmentInput) (*domain.Appointment, error) {
	app, err := s.ownedApplication(ctx, caller, applicationID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Date) == "" ||
		strings.TrimSpace(input.Time) == "" ||
		strings.TrimSpace(input.Location) == "" {
		return nil, apperrors.NewValidationError("All fields are required", nil)
	}

	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid date format", nil)
	}

	appt := &domain.Appointment{
		ApplicationID: app.ID,
		Date:          date,
		TimeOfDay:     input.Time,
		Location:      input.Location,
	}
	if err := s.appointments.Upsert(ctx, appt); err != nil {
		return nil, err
	}

	s.publish(ctx, caller, events.EventAppointmentScheduled, app.ID, events.AppointmentScheduledPayload{
		Date:     input.Date,
		Time:     input.Time,
		Location: input.Location,
	})
	return appt, nil
}

// PaymentInput carries the payment form fields. Amount arrives as the raw
// form string.
type PaymentInput struct {
	Amount string
	Method string
}

// RecordPayment simulates a successful gateway charge: it upserts the single
// payment for the application with status Success and forces the application
// status to Under Review regardless of its prior value.
func (s *ApplicationService) RecordPayment(ctx context.Context, caller Caller, applicationID int64, input PaymentInput) (*domain.Payment, error) {
	app, err := s.ownedApplication(ctx, caller, applicationID)
	if err != nil {
		return nil, err
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(input.Amount), 64)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid amount", nil)
	}
	if strings.TrimSpace(input.Method) == "" {
		return nil, apperrors.NewValidationError("Please select payment method", nil)
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ApplicationID: app.ID,
		Amount:        amount,
		Status:        domain.PaymentStatusSuccess,
		Method:        input.Method,
		TransactionID: paymentTransactionID(now, app.ID),
		PaidAt:        &now,
	}
	// the payment row and the forced status change commit together
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.payments.Upsert(ctx, payment); err != nil {
			return err
		}
		app.Status = domain.StatusUnderReview
		return s.applications.Update(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, caller, events.EventPaymentRecorded, app.ID, events.PaymentRecordedPayload{
		Amount:        payment.Amount,
		Method:        payment.Method,
		Status:        payment.Status,
		TransactionID: payment.TransactionID,
	})
	return payment, nil
}

// ApplicationDetail bundles an application with its dependents for the
// status views.
type ApplicationDetail struct {
	Application domain.Application
	Documents   []domain.Document
	Appointment *domain.Appointment
	Payment     *domain.Payment
}

// GetDetail loads one application with its dependents, owner-or-admin only.
func (s *ApplicationService) GetDetail(ctx context.Context, caller Caller, applicationID int64) (*ApplicationDetail, error) {
	app, err := s.ownedApplication(ctx, caller, applicationID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	detail := &ApplicationDetail{Application: *app, Documents: docs}

	appt, err := s.appointments.GetByApplication(ctx, app.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	detail.Appointment = appt

	payment, err := s.payments.GetByApplication(ctx, app.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	detail.Payment = payment

	return detail, nil
}

// ListForUser returns the caller's applications, newest first.
func (s *ApplicationService) ListForUser(ctx context.Context, caller Caller) ([]domain.Application, error) {
	return s.applications.ListByUser(ctx, caller.UserID)
}

// ListAll returns every application, newest first. Admin only.
func (s *ApplicationService) ListAll(ctx context.Context, caller Caller) ([]domain.Application, error) {
	if !caller.Role.IsAdmin() {
		return nil, apperrors.NewForbidden("Admin access required")
	}
	return s.applications.ListAll(ctx)
}

// SetStatus persists an arbitrary review status. Admin only; the status
// text itself is not validated beyond being non-empty.
func (s *ApplicationService) SetStatus(ctx context.Context, caller Caller, applicationID int64, status string) (*domain.Application, error) {
	if !caller.Role.IsAdmin() {
		return nil, apperrors.NewForbidden("Admin access required")
	}
	if strings.TrimSpace(status) == "" {
		return nil, apperrors.NewValidationError("Status is required", nil)
	}

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("application", map[string]any{"id": applicationID})
		}
		return nil, err
	}

	oldStatus := app.Status
	app.Status = domain.ApplicationStatus(status)
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, err
	}

	s.publish(ctx, caller, events.EventStatusChanged, app.ID, events.StatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: app.Status,
	})
	return app, nil
}

// DocumentByStoredName resolves a stored document record. Admin only, per
// the current access policy for uploads.
func (s *ApplicationService) DocumentByStoredName(ctx context.Context, caller Caller, storedName string) (*domain.Document, error) {
	if !caller.Role.IsAdmin() {
		return nil, apperrors.NewForbidden("Admin access required")
	}
	doc, err := s.documents.GetByStoredName(ctx, storedName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("document", nil)
		}
		return nil, err
	}
	return doc, nil
}

func (s *ApplicationService) ownedApplication(ctx context.Context, caller Caller, applicationID int64) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("application", map[string]any{"id": applicationID})
		}
		return nil, err
	}
	if app.UserID != caller.UserID && !caller.Role.IsAdmin() {
		return nil, apperrors.NewForbidden("Unauthorized")
	}
	return app, nil
}

func (s *ApplicationService) publish(ctx context.Context, caller Caller, eventType events.EventType, applicationID int64, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ApplicationID: applicationID,
		Actor:         events.Actor{UserID: caller.UserID, Role: caller.Role},
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", string(eventType)), zap.Error(err))
	}
}

// paymentTransactionID derives the simulated gateway reference from the
// payment time and application id. Uniqueness is best-effort.
func paymentTransactionID(t time.Time, applicationID int64) string {
	return fmt.Sprintf("TXN%d%d", t.Unix(), applicationID)
}
