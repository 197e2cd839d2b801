package service

import (
	"context"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/passport-portal/internal/auth"
	"github.com/spec-kit/passport-portal/internal/domain"
	"github.com/spec-kit/passport-portal/internal/events"
)

type lifecycleFixture struct {
	svc          *ApplicationService
	applications *fakeApplicationRepo
	documents    *fakeDocumentRepo
	appointments *fakeAppointmentRepo
	payments     *fakePaymentRepo
	store        *fakeBlobStore
	dispatcher   events.Dispatcher
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		applications: newFakeApplicationRepo(),
		documents:    newFakeDocumentRepo(),
		appointments: newFakeAppointmentRepo(),
		payments:     newFakePaymentRepo(),
		store:        newFakeBlobStore(),
		dispatcher:   events.NewInMemoryDispatcher(),
	}
	f.svc = NewApplicationService(ApplicationDependencies{
		ApplicationRepo: f.applications,
		DocumentRepo:    f.documents,
		AppointmentRepo: f.appointments,
		PaymentRepo:     f.payments,
		Store:           f.store,
		Dispatcher:      f.dispatcher,
		Tx:              &fakeTxManager{applications: f.applications, payments: f.payments},
	})
	return f
}

var (
	owner = Caller{UserID: 1, Role: domain.RoleUser}
	other = Caller{UserID: 2, Role: domain.RoleUser}
	admin = Caller{UserID: 9, Role: domain.RoleAdmin}
)

func validSubmit() SubmitInput {
	return SubmitInput{
		FullName:     "Alice Example",
		DateOfBirth:  "2000-01-01",
		Address:      "1 Main St",
		Nationality:  "Utopian",
		PassportType: "Ordinary",
	}
}

func upload(name string) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("missing field", func(t *testing.T) {
		f := newLifecycleFixture()
		input := validSubmit()
		input.Nationality = ""
		_, _, err := f.svc.Submit(ctx, owner, input)
		if code := errorCode(t, err); code != "VALIDATION_FAILED" {
			t.Errorf("code = %s, want VALIDATION_FAILED", code)
		}
	})

	t.Run("malformed date of birth", func(t *testing.T) {
		f := newLifecycleFixture()
		input := validSubmit()
		input.DateOfBirth = "01/01/2000"
		_, _, err := f.svc.Submit(ctx, owner, input)
		if code := errorCode(t, err); code != "VALIDATION_FAILED" {
			t.Errorf("code = %s, want VALIDATION_FAILED", code)
		}
	})

	t.Run("creates submitted application owned by caller", func(t *testing.T) {
		f := newLifecycleFixture()
		app, docs, err := f.svc.Submit(ctx, owner, validSubmit())
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if app.Status != domain.StatusSubmitted {
			t.Errorf("status = %v, want %v", app.Status, domain.StatusSubmitted)
		}
		if app.UserID != owner.UserID {
			t.Errorf("owner = %d, want %d", app.UserID, owner.UserID)
		}
		if len(docs) != 0 {
			t.Errorf("expected no documents, got %d", len(docs))
		}
	})

	t.Run("bad upload skipped without aborting", func(t *testing.T) {
		f := newLifecycleFixture()
		input := validSubmit()
		input.Files = []*multipart.FileHeader{upload("resume.exe"), upload("scan.PDF")}

		app, docs, err := f.svc.Submit(ctx, owner, input)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("expected 1 document, got %d", len(docs))
		}
		want := "app_1_scan.PDF"
		if docs[0].StoredName != want {
			t.Errorf("stored name = %q, want %q", docs[0].StoredName, want)
		}
		if docs[0].OriginalName != "scan.PDF" {
			t.Errorf("original name = %q, want %q", docs[0].OriginalName, "scan.PDF")
		}
		if !f.store.has(want) {
			t.Errorf("file %q not written to the store", want)
		}

		listed, err := f.documents.ListByApplication(ctx, app.ID)
		if err != nil {
			t.Fatalf("ListByApplication: %v", err)
		}
		if len(listed) != 1 {
			t.Errorf("expected 1 persisted document, got %d", len(listed))
		}
	})

	t.Run("failed document row removes the stored file", func(t *testing.T) {
		f := newLifecycleFixture()
		f.documents.fail = true
		input := validSubmit()
		input.Files = []*multipart.FileHeader{upload("scan.pdf")}

		_, docs, err := f.svc.Submit(ctx, owner, input)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("expected no documents, got %d", len(docs))
		}
		if f.store.has("app_1_scan.pdf") {
			t.Error("orphaned file left in the store")
		}
	})

	t.Run("publishes submitted event", func(t *testing.T) {
		f := newLifecycleFixture()
		var got []events.Event
		f.dispatcher.Subscribe(events.EventApplicationSubmitted, func(_ context.Context, e events.Event) error {
			got = append(got, e)
			return nil
		})

		app, _, err := f.svc.Submit(ctx, owner, validSubmit())
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 event, got %d", len(got))
		}
		if got[0].ApplicationID != app.ID {
			t.Errorf("event application = %d, want %d", got[0].ApplicationID, app.ID)
		}
	})
}

func TestScheduleAppointment(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()
	app, _, err := f.svc.Submit(ctx, owner, validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	input := AppointmentInput{Date: "2025-06-01", Time: "10:00", Location: "Embassy"}

	t.Run("unknown application", func(t *testing.T) {
		_, err := f.svc.ScheduleAppointment(ctx, owner, 999, input)
		if code := errorCode(t, err); code != "NOT_FOUND" {
			t.Errorf("code = %s, want NOT_FOUND", code)
		}
	})

	t.Run("non-owner denied", func(t *testing.T) {
		_, err := f.svc.ScheduleAppointment(ctx, other, app.ID, input)
		if code := errorCode(t, err); code != "FORBIDDEN" {
			t.Errorf("code = %s, want FORBIDDEN", code)
		}
	})

	t.Run("malformed date", func(t *testing.T) {
		bad := input
		bad.Date = "June 1st"
		_, err := f.svc.ScheduleAppointment(ctx, owner, app.ID, bad)
		if code := errorCode(t, err); code != "VALIDATION_FAILED" {
			t.Errorf("code = %s, want VALIDATION_FAILED", code)
		}
	})

	t.Run("upsert is idempotent per application", func(t *testing.T) {
		first, err := f.svc.ScheduleAppointment(ctx, owner, app.ID, input)
		if err != nil {
			t.Fatalf("ScheduleAppointment: %v", err)
		}

		second, err := f.svc.ScheduleAppointment(ctx, owner, app.ID, AppointmentInput{
			Date: "2025-07-15", Time: "14:30", Location: "Consulate",
		})
		if err != nil {
			t.Fatalf("ScheduleAppointment: %v", err)
		}

		if f.appointments.count() != 1 {
			t.Fatalf("expected 1 appointment row, got %d", f.appointments.count())
		}
		if second.ID != first.ID {
			t.Errorf("second upsert created a new row: %d != %d", second.ID, first.ID)
		}

		stored, err := f.appointments.GetByApplication(ctx, app.ID)
		if err != nil {
			t.Fatalf("GetByApplication: %v", err)
		}
		if stored.Location != "Consulate" || stored.TimeOfDay != "14:30" {
			t.Errorf("row does not reflect second submission: %+v", stored)
		}
	})

	t.Run("status unchanged", func(t *testing.T) {
		reloaded, err := f.applications.GetByID(ctx, app.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if reloaded.Status != domain.StatusSubmitted {
			t.Errorf("status = %v, want %v", reloaded.Status, domain.StatusSubmitted)
		}
	})
}

func TestRecordPayment(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()
	app, _, err := f.svc.Submit(ctx, owner, validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	t.Run("invalid amount", func(t *testing.T) {
		_, err := f.svc.RecordPayment(ctx, owner, app.ID, PaymentInput{Amount: "lots", Method: "card"})
		if code := errorCode(t, err); code != "VALIDATION_FAILED" {
			t.Errorf("code = %s, want VALIDATION_FAILED", code)
		}
	})

	t.Run("missing method", func(t *testing.T) {
		_, err := f.svc.RecordPayment(ctx, owner, app.ID, PaymentInput{Amount: "150.00"})
		if code := errorCode(t, err); code != "VALIDATION_FAILED" {
			t.Errorf("code = %s, want VALIDATION_FAILED", code)
		}
	})

	t.Run("non-owner denied", func(t *testing.T) {
		_, err := f.svc.RecordPayment(ctx, other, app.ID, PaymentInput{Amount: "150.00", Method: "card"})
		if code := errorCode(t, err); code != "FORBIDDEN" {
			t.Errorf("code = %s, want FORBIDDEN", code)
		}
	})

	t.Run("simulated success forces review status", func(t *testing.T) {
		payment, err := f.svc.RecordPayment(ctx, owner, app.ID, PaymentInput{Amount: "150.00", Method: "card"})
		if err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
		if payment.Status != domain.PaymentStatusSuccess {
			t.Errorf("payment status = %v, want %v", payment.Status, domain.PaymentStatusSuccess)
		}
		if payment.Amount != 150.00 {
			t.Errorf("amount = %v, want 150.00", payment.Amount)
		}
		if !strings.HasPrefix(payment.TransactionID, "TXN") {
			t.Errorf("transaction id = %q, want TXN prefix", payment.TransactionID)
		}
		if payment.PaidAt == nil || payment.PaidAt.IsZero() {
			t.Error("paid-at not set")
		}

		reloaded, err := f.applications.GetByID(ctx, app.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if reloaded.Status != domain.StatusUnderReview {
			t.Errorf("application status = %v, want %v", reloaded.Status, domain.StatusUnderReview)
		}
	})

	t.Run("failed status update leaves no payment behind", func(t *testing.T) {
		f := newLifecycleFixture()
		app, _, err := f.svc.Submit(ctx, owner, validSubmit())
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		f.applications.failUpdate = true

		_, err = f.svc.RecordPayment(ctx, owner, app.ID, PaymentInput{Amount: "150.00", Method: "card"})
		if err == nil {
			t.Fatal("expected RecordPayment to fail")
		}
		if f.payments.count() != 0 {
			t.Errorf("payment row persisted despite the failed status update")
		}

		f.applications.failUpdate = false
		reloaded, err := f.applications.GetByID(ctx, app.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if reloaded.Status != domain.StatusSubmitted {
			t.Errorf("status = %v, want %v", reloaded.Status, domain.StatusSubmitted)
		}
	})

	t.Run("repeat payment overwrites the single row", func(t *testing.T) {
		payment, err := f.svc.RecordPayment(ctx, owner, app.ID, PaymentInput{Amount: "200.00", Method: "bank"})
		if err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
		if f.payments.count() != 1 {
			t.Fatalf("expected 1 payment row, got %d", f.payments.count())
		}
		if payment.Amount != 200.00 || payment.Method != "bank" {
			t.Errorf("row does not reflect second submission: %+v", payment)
		}
	})
}

func TestStatusViews(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	first, _, err := f.svc.Submit(ctx, owner, validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	second, _, err := f.svc.Submit(ctx, owner, validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, _, err := f.svc.Submit(ctx, other, validSubmit()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	t.Run("list own applications newest first", func(t *testing.T) {
		apps, err := f.svc.ListForUser(ctx, owner)
		if err != nil {
			t.Fatalf("ListForUser: %v", err)
		}
		if len(apps) != 2 {
			t.Fatalf("expected 2 applications, got %d", len(apps))
		}
		if apps[0].ID != second.ID || apps[1].ID != first.ID {
			t.Errorf("not newest first: %d, %d", apps[0].ID, apps[1].ID)
		}
	})

	t.Run("dashboard shows latest", func(t *testing.T) {
		latest, err := f.svc.Dashboard(ctx, owner)
		if err != nil {
			t.Fatalf("Dashboard: %v", err)
		}
		if latest == nil || latest.ID != second.ID {
			t.Errorf("latest = %+v, want id %d", latest, second.ID)
		}
	})

	t.Run("dashboard empty for new user", func(t *testing.T) {
		latest, err := f.svc.Dashboard(ctx, Caller{UserID: 77, Role: domain.RoleUser})
		if err != nil {
			t.Fatalf("Dashboard: %v", err)
		}
		if latest != nil {
			t.Errorf("expected nil, got %+v", latest)
		}
	})

	t.Run("detail denied to non-owner", func(t *testing.T) {
		_, err := f.svc.GetDetail(ctx, other, first.ID)
		if code := errorCode(t, err); code != "FORBIDDEN" {
			t.Errorf("code = %s, want FORBIDDEN", code)
		}
	})

	t.Run("detail visible to admin", func(t *testing.T) {
		detail, err := f.svc.GetDetail(ctx, admin, first.ID)
		if err != nil {
			t.Fatalf("GetDetail: %v", err)
		}
		if detail.Application.ID != first.ID {
			t.Errorf("application = %d, want %d", detail.Application.ID, first.ID)
		}
	})

	t.Run("list all is admin only", func(t *testing.T) {
		if _, err := f.svc.ListAll(ctx, owner); err == nil {
			t.Error("expected non-admin to be denied")
		}
		apps, err := f.svc.ListAll(ctx, admin)
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if len(apps) != 3 {
			t.Errorf("expected 3 applications, got %d", len(apps))
		}
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()
	app, _, err := f.svc.Submit(ctx, owner, validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	t.Run("non-admin denied", func(t *testing.T) {
		_, err := f.svc.SetStatus(ctx, owner, app.ID, "Approved")
		if code := errorCode(t, err); code != "FORBIDDEN" {
			t.Errorf("code = %s, want FORBIDDEN", code)
		}
	})

	t.Run("empty status rejected", func(t *testing.T) {
		_, err := f.svc.SetStatus(ctx, admin, app.ID, "  ")
		if code := errorCode(t, err); code != "VALIDATION_FAILED" {
			t.Errorf("code = %s, want VALIDATION_FAILED", code)
		}
	})

	t.Run("arbitrary status persisted", func(t *testing.T) {
		updated, err := f.svc.SetStatus(ctx, admin, app.ID, "Pending biometric re-check")
		if err != nil {
			t.Fatalf("SetStatus: %v", err)
		}
		if updated.Status != domain.ApplicationStatus("Pending biometric re-check") {
			t.Errorf("status = %v", updated.Status)
		}
	})
}

func TestLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	users := newFakeUserRepo()
	sessions := auth.NewSessionManager(newFakeSessionStore(), "test-secret", "passport_session", time.Hour)
	authSvc := NewAuthService(users, sessions, 4)

	registered, err := authSvc.Register(ctx, RegisterInput{
		Name: "Alice", Email: "a@x.com", Password: "pw1234", ConfirmPassword: "pw1234",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	loggedIn, _, err := authSvc.Login(ctx, "a@x.com", "pw1234")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	caller := Caller{UserID: loggedIn.ID, Role: loggedIn.Role}
	if caller.UserID != registered.ID {
		t.Fatalf("login resolved a different user: %d != %d", caller.UserID, registered.ID)
	}

	app, _, err := f.svc.Submit(ctx, caller, validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.svc.ScheduleAppointment(ctx, caller, app.ID, AppointmentInput{
		Date: "2025-06-01", Time: "10:00", Location: "Embassy",
	}); err != nil {
		t.Fatalf("ScheduleAppointment: %v", err)
	}
	if _, err := f.svc.RecordPayment(ctx, caller, app.ID, PaymentInput{
		Amount: "1500.0", Method: "card",
	}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	apps, err := f.svc.ListForUser(ctx, caller)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected 1 application, got %d", len(apps))
	}
	if apps[0].Status != domain.StatusUnderReview {
		t.Errorf("status = %v, want %v", apps[0].Status, domain.StatusUnderReview)
	}

	detail, err := f.svc.GetDetail(ctx, caller, app.ID)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if detail.Appointment == nil {
		t.Error("expected an appointment")
	}
	if detail.Payment == nil {
		t.Fatal("expected a payment")
	}
	if detail.Payment.Status != domain.PaymentStatusSuccess {
		t.Errorf("payment status = %v, want %v", detail.Payment.Status, domain.PaymentStatusSuccess)
	}
	if detail.Payment.Amount != 1500.0 {
		t.Errorf("payment amount = %v, want 1500.0", detail.Payment.Amount)
	}
}
