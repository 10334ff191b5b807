package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"verifact/internal/domain"
	"verifact/internal/port"
)

type extractionRepo struct {
	db *sqlx.DB
}

// NewExtractionRepo creates a new PostgreSQL-backed ExtractionRepository.
func NewExtractionRepo(db *sqlx.DB) port.ExtractionRepository {
	return &extractionRepo{db: db}
}

func (r *extractionRepo) Create(ctx context.Context, e *domain.Extraction) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO extractions (
			id, file_name, content_type, size_bytes, storage_key, status,
			model_used, record, is_valid, errors, total_errors, failure_reason,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.FileName, e.ContentType, e.SizeBytes, e.StorageKey, e.Status,
		e.ModelUsed, e.Record, e.IsValid, e.Errors, e.TotalErrors, e.FailureReason,
		e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("extractionRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionRepo) Update(ctx context.Context, e *domain.Extraction) error {
	e.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE extractions SET
			status = $2, model_used = $3, record = $4, is_valid = $5,
			errors = $6, total_errors = $7, failure_reason = $8, updated_at = $9
		WHERE id = $1`,
		e.ID, e.Status, e.ModelUsed, e.Record, e.IsValid,
		e.Errors, e.TotalErrors, e.FailureReason, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("extractionRepo.Update: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("extractionRepo.Update: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *extractionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	var e domain.Extraction
	err := r.db.GetContext(ctx, &e,
		"SELECT * FROM extractions WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("extractionRepo.GetByID: %w", err)
	}
	return &e, nil
}

func (r *extractionRepo) List(ctx context.Context, filter port.ListFilter) ([]domain.Extraction, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if filter.IsValid != nil {
		where = "is_valid = $1"
		args = append(args, *filter.IsValid)
	}

	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM extractions WHERE "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.List count: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(
		"SELECT * FROM extractions WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	var results []domain.Extraction
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.List: %w", err)
	}
	return results, total, nil
}
