package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/passport-portal/internal/domain"
)

// PaymentRepository persists the single payment per application, keyed by
// application_id like the appointment upsert.
type PaymentRepository interface {
	Upsert(ctx context.Context, payment *domain.Payment) error
	GetByApplication(ctx context.Context, applicationID int64) (*domain.Payment, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository constructs repository.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) Upsert(ctx context.Context, payment *domain.Payment) error {
	const query = `
        INSERT INTO payments (application_id, amount, status, method, transaction_id, paid_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (application_id) DO UPDATE
            SET amount=EXCLUDED.amount,
                status=EXCLUDED.status,
                method=EXCLUDED.method,
                transaction_id=EXCLUDED.transaction_id,
                paid_at=EXCLUDED.paid_at,
                updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		payment.ApplicationID,
		payment.Amount,
		payment.Status,
		payment.Method,
		payment.TransactionID,
		payment.PaidAt,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
}

func (r *paymentRepository) GetByApplication(ctx context.Context, applicationID int64) (*domain.Payment, error) {
	const query = `
        SELECT id, application_id, amount, status, method, transaction_id, paid_at, created_at, updated_at
        FROM payments WHERE application_id=$1`
	var payment domain.Payment
	if err := querier(ctx, r.pool).QueryRow(ctx, query, applicationID).Scan(
		&payment.ID,
		&payment.ApplicationID,
		&payment.Amount,
		&payment.Status,
		&payment.Method,
		&payment.TransactionID,
		&payment.PaidAt,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &payment, nil
}
