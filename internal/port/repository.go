package port

import (
	"context"

	"github.com/google/uuid"

	"verifact/internal/domain"
)

// ListFilter holds pagination parameters for listing extractions.
type ListFilter struct {
	Offset  int
	Limit   int
	IsValid *bool
}

// ExtractionRepository persists extraction results and their verdicts.
type ExtractionRepository interface {
	Create(ctx context.Context, e *domain.Extraction) error
	Update(ctx context.Context, e *domain.Extraction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Extraction, int, error)
}
