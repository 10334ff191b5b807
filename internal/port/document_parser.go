package port

import (
	"context"
	"encoding/json"
)

// ParseInput carries the data needed for invoice extraction.
type ParseInput struct {
	FileBytes   []byte
	ContentType string
	FileName    string
}

// ParseOutput contains the extracted invoice record from an LLM parser.
type ParseOutput struct {
	// Record is the extracted invoice record after JSON cleanup, as raw JSON.
	Record json.RawMessage
	// RawText is the model's unprocessed response text.
	RawText   string
	ModelUsed string
}

// DocumentParser abstracts LLM-based invoice extraction.
type DocumentParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
