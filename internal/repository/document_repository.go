package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/passport-portal/internal/domain"
)

// DocumentRepository persists uploaded document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	ListByApplication(ctx context.Context, applicationID int64) ([]domain.Document, error)
	GetByStoredName(ctx context.Context, storedName string) (*domain.Document, error)
}

type documentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository constructs repository.
func NewDocumentRepository(pool *pgxpool.Pool) DocumentRepository {
	return &documentRepository{pool: pool}
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	const query = `
        INSERT INTO documents (application_id, stored_name, original_name)
        VALUES ($1,$2,$3)
        RETURNING id, uploaded_at`
	return r.pool.QueryRow(ctx, query,
		doc.ApplicationID,
		doc.StoredName,
		doc.OriginalName,
	).Scan(&doc.ID, &doc.UploadedAt)
}

func (r *documentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]domain.Document, error) {
	const query = `
        SELECT id, application_id, stored_name, original_name, uploaded_at
        FROM documents WHERE application_id=$1 ORDER BY uploaded_at DESC`
	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.ApplicationID,
			&doc.StoredName,
			&doc.OriginalName,
			&doc.UploadedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, rows.Err()
}

func (r *documentRepository) GetByStoredName(ctx context.Context, storedName string) (*domain.Document, error) {
	const query = `
        SELECT id, application_id, stored_name, original_name, uploaded_at
        FROM documents WHERE stored_name=$1`
	var doc domain.Document
	if err := r.pool.QueryRow(ctx, query, storedName).Scan(
		&doc.ID,
		&doc.ApplicationID,
		&doc.StoredName,
		&doc.OriginalName,
		&doc.UploadedAt,
	); err != nil {
		return nil, err
	}
	return &doc, nil
}
