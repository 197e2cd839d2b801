package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/passport-portal/internal/domain"
)

// AppointmentRepository persists the single appointment per application.
// Upsert is keyed by application_id so repeated scheduling overwrites the
// existing row instead of creating a duplicate.
type AppointmentRepository interface {
	Upsert(ctx context.Context, appt *domain.Appointment) error
	GetByApplication(ctx context.Context, applicationID int64) (*domain.Appointment, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository constructs repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

func (r *appointmentRepository) Upsert(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (application_id, appointment_date, appointment_time, location)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (application_id) DO UPDATE
            SET appointment_date=EXCLUDED.appointment_date,
                appointment_time=EXCLUDED.appointment_time,
                location=EXCLUDED.location,
                updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		appt.ApplicationID,
		appt.Date,
		appt.TimeOfDay,
		appt.Location,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)
}

func (r *appointmentRepository) GetByApplication(ctx context.Context, applicationID int64) (*domain.Appointment, error) {
	const query = `
        SELECT id, application_id, appointment_date, appointment_time, location, created_at, updated_at
        FROM appointments WHERE application_id=$1`
	var appt domain.Appointment
	if err := r.pool.QueryRow(ctx, query, applicationID).Scan(
		&appt.ID,
		&appt.ApplicationID,
		&appt.Date,
		&appt.TimeOfDay,
		&appt.Location,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}
