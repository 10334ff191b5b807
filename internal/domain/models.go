package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractionStatus tracks an extraction through the pipeline.
type ExtractionStatus string

const (
	ExtractionStatusPending   ExtractionStatus = "pending"
	ExtractionStatusExtracted ExtractionStatus = "extracted"
	ExtractionStatusFailed    ExtractionStatus = "failed"
)

// Extraction is one processed invoice image: where the source lives, what the
// model returned, and the validation verdict over the extracted record.
type Extraction struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	FileName    string           `db:"file_name" json:"file_name"`
	ContentType string           `db:"content_type" json:"content_type"`
	SizeBytes   int64            `db:"size_bytes" json:"size_bytes"`
	StorageKey  string           `db:"storage_key" json:"storage_key"`
	Status      ExtractionStatus `db:"status" json:"status"`
	ModelUsed   string           `db:"model_used" json:"model_used"`

	// Record is the extracted invoice record as returned by the parser,
	// after JSON cleanup but before any validation.
	Record json.RawMessage `db:"record" json:"record,omitempty"`

	// Verdict fields, denormalized from the validator result.
	IsValid     bool            `db:"is_valid" json:"is_valid"`
	Errors      json.RawMessage `db:"errors" json:"errors,omitempty"`
	TotalErrors int             `db:"total_errors" json:"total_errors"`

	FailureReason string    `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
