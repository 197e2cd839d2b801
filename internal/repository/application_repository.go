package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/passport-portal/internal/domain"
)

// ApplicationRepository encapsulates application persistence. Listings are
// ordered newest-first.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	Update(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id int64) (*domain.Application, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Application, error)
	LatestByUser(ctx context.Context, userID int64) (*domain.Application, error)
	ListAll(ctx context.Context) ([]domain.Application, error)
}

type applicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository instantiates repository.
func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{pool: pool}
}

const applicationColumns = `id, user_id, full_name, dob, address, nationality, passport_type, status, created_at, updated_at`

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	const query = `
        INSERT INTO applications (user_id, full_name, dob, address, nationality, passport_type, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		app.UserID,
		app.FullName,
		app.DateOfBirth,
		app.Address,
		app.Nationality,
		app.PassportType,
		app.Status,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
}

func (r *applicationRepository) Update(ctx context.Context, app *domain.Application) error {
	const query = `
        UPDATE applications SET full_name=$1, dob=$2, address=$3, nationality=$4,
            passport_type=$5, status=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := querier(ctx, r.pool).Exec(ctx, query,
		app.FullName,
		app.DateOfBirth,
		app.Address,
		app.Nationality,
		app.PassportType,
		app.Status,
		app.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE id=$1`
	var app domain.Application
	if err := scanApplication(querier(ctx, r.pool).QueryRow(ctx, query, id), &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Application, error) {
	const query = `SELECT ` + applicationColumns + `
        FROM applications WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *applicationRepository) LatestByUser(ctx context.Context, userID int64) (*domain.Application, error) {
	const query = `SELECT ` + applicationColumns + `
        FROM applications WHERE user_id=$1 ORDER BY created_at DESC LIMIT 1`
	var app domain.Application
	if err := scanApplication(querier(ctx, r.pool).QueryRow(ctx, query, userID), &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ListAll(ctx context.Context) ([]domain.Application, error) {
	const query = `SELECT ` + applicationColumns + `
        FROM applications ORDER BY created_at DESC`
	rows, err := querier(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func scanApplication(row pgx.Row, app *domain.Application) error {
	return row.Scan(
		&app.ID,
		&app.UserID,
		&app.FullName,
		&app.DateOfBirth,
		&app.Address,
		&app.Nationality,
		&app.PassportType,
		&app.Status,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
}

func scanApplications(rows pgx.Rows) ([]domain.Application, error) {
	var result []domain.Application
	for rows.Next() {
		var app domain.Application
		if err := scanApplication(rows, &app); err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	return result, rows.Err()
}
