package service

import (
	"context"
	"errors"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/passport-portal/internal/auth"
	"github.com/spec-kit/passport-portal/internal/domain"
	"github.com/spec-kit/passport-portal/internal/storage"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*auth.Session)}
}

func (s *fakeSessionStore) Save(ctx context.Context, session *auth.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.sessions[session.ID] = &clone
	return nil
}

func (s *fakeSessionStore) Get(ctx context.Context, id string) (*auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, auth.ErrNoSession
	}
	clone := *session
	return &clone, nil
}

func (s *fakeSessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type fakeApplicationRepo struct {
	mu         sync.Mutex
	nextID     int64
	clock      time.Time
	apps       map[int64]*domain.Application
	failUpdate bool
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		apps:  make(map[int64]*domain.Application),
	}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.clock = r.clock.Add(time.Minute)
	app.ID = r.nextID
	app.CreatedAt = r.clock
	app.UpdatedAt = r.clock
	clone := *app
	r.apps[app.ID] = &clone
	return nil
}

func (r *fakeApplicationRepo) Update(ctx context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate {
		return errors.New("update failed")
	}
	if _, ok := r.apps[app.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *app
	r.apps[app.ID] = &clone
	return nil
}

func (r *fakeApplicationRepo) snapshot() map[int64]*domain.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[int64]*domain.Application, len(r.apps))
	for id, app := range r.apps {
		clone := *app
		snap[id] = &clone
	}
	return snap
}

func (r *fakeApplicationRepo) restore(snap map[int64]*domain.Application) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps = snap
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *app
	return &clone, nil
}

func (r *fakeApplicationRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Application
	for _, app := range r.apps {
		if app.UserID == userID {
			result = append(result, *app)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *fakeApplicationRepo) LatestByUser(ctx context.Context, userID int64) (*domain.Application, error) {
	list, _ := r.ListByUser(ctx, userID)
	if len(list) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &list[0], nil
}

func (r *fakeApplicationRepo) ListAll(ctx context.Context) ([]domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Application
	for _, app := range r.apps {
		result = append(result, *app)
	}
	sortNewestFirst(result)
	return result, nil
}

func sortNewestFirst(apps []domain.Application) {
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
}

type fakeDocumentRepo struct {
	mu     sync.Mutex
	nextID int64
	docs   []domain.Document
	fail   bool
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{}
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("insert failed")
	}
	r.nextID++
	doc.ID = r.nextID
	doc.UploadedAt = time.Now()
	r.docs = append(r.docs, *doc)
	return nil
}

func (r *fakeDocumentRepo) ListByApplication(ctx context.Context, applicationID int64) ([]domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Document
	for _, doc := range r.docs {
		if doc.ApplicationID == applicationID {
			result = append(result, doc)
		}
	}
	return result, nil
}

func (r *fakeDocumentRepo) GetByStoredName(ctx context.Context, storedName string) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.StoredName == storedName {
			clone := doc
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	nextID       int64
	appointments map[int64]*domain.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[int64]*domain.Appointment)}
}

func (r *fakeAppointmentRepo) Upsert(ctx context.Context, appt *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.appointments[appt.ApplicationID]; ok {
		appt.ID = existing.ID
		appt.CreatedAt = existing.CreatedAt
	} else {
		r.nextID++
		appt.ID = r.nextID
		appt.CreatedAt = time.Now()
	}
	appt.UpdatedAt = time.Now()
	clone := *appt
	r.appointments[appt.ApplicationID] = &clone
	return nil
}

func (r *fakeAppointmentRepo) GetByApplication(ctx context.Context, applicationID int64) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appointments[applicationID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *appt
	return &clone, nil
}

func (r *fakeAppointmentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appointments)
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	nextID   int64
	payments map[int64]*domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[int64]*domain.Payment)}
}

func (r *fakePaymentRepo) Upsert(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.payments[payment.ApplicationID]; ok {
		payment.ID = existing.ID
		payment.CreatedAt = existing.CreatedAt
	} else {
		r.nextID++
		payment.ID = r.nextID
		payment.CreatedAt = time.Now()
	}
	payment.UpdatedAt = time.Now()
	clone := *payment
	r.payments[payment.ApplicationID] = &clone
	return nil
}

func (r *fakePaymentRepo) GetByApplication(ctx context.Context, applicationID int64) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[applicationID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *payment
	return &clone, nil
}

func (r *fakePaymentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

func (r *fakePaymentRepo) snapshot() map[int64]*domain.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[int64]*domain.Payment, len(r.payments))
	for id, payment := range r.payments {
		clone := *payment
		snap[id] = &clone
	}
	return snap
}

func (r *fakePaymentRepo) restore(snap map[int64]*domain.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = snap
}

// fakeTxManager mirrors transactional rollback by restoring the repos that
// participate in a failed unit of work.
type fakeTxManager struct {
	applications *fakeApplicationRepo
	payments     *fakePaymentRepo
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	apps := m.applications.snapshot()
	pays := m.payments.snapshot()
	if err := fn(ctx); err != nil {
		m.applications.restore(apps)
		m.payments.restore(pays)
		return err
	}
	return nil
}

// fakeBlobStore applies the real allow-list and naming rules without
// touching the filesystem.
type fakeBlobStore struct {
	mu     sync.Mutex
	stored map[string]string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{stored: make(map[string]string)}
}

func (s *fakeBlobStore) Store(applicationID int64, file *multipart.FileHeader) (string, string, error) {
	if file == nil || file.Filename == "" {
		return "", "", storage.ErrUnsafeName
	}
	if !storage.Allowed(file.Filename) {
		return "", "", storage.ErrUnsupportedType
	}
	sanitized := storage.Sanitize(file.Filename)
	if sanitized == "" {
		return "", "", storage.ErrUnsafeName
	}
	stored := storage.StoredName(applicationID, sanitized)
	s.mu.Lock()
	s.stored[stored] = sanitized
	s.mu.Unlock()
	return stored, sanitized, nil
}

func (s *fakeBlobStore) Remove(storedName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stored, storedName)
	return nil
}

func (s *fakeBlobStore) has(storedName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stored[storedName]
	return ok
}
