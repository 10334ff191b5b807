package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verifact/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 17)
	assert.Equal(t, "File Name", row[0])
	assert.Equal(t, "Status", row[1])
	assert.Equal(t, "Created At", row[16])
}

func TestWriteExtractions_Extracted(t *testing.T) {
	record := json.RawMessage(`{
		"invoice_number": "INV-001",
		"invoice_date": "2025-01-15",
		"supplier": {"name": "Acme Supplies"},
		"client": {"name": "Globex Corp"},
		"items": [
			{"description": "Widget", "quantity": 2, "unit_price": 10.0, "total_price": 20.0},
			{"description": "Gadget", "quantity": 1, "unit_price": 5.0, "total_price": 5.0}
		],
		"subtotal": 25.0,
		"discount": 0,
		"tax": 4.5,
		"shipping_cost": 3.0,
		"currency": "USD",
		"total": 32.5
	}`)

	createdAt := time.Date(2025, 1, 14, 8, 0, 0, 0, time.UTC)
	e := domain.Extraction{
		ID:          uuid.New(),
		FileName:    "invoice_001.png",
		Status:      domain.ExtractionStatusExtracted,
		ModelUsed:   "gemini-2.0-flash",
		Record:      record,
		IsValid:     true,
		TotalErrors: 0,
		CreatedAt:   createdAt,
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteExtractions([]domain.Extraction{e}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 17)
	assert.Equal(t, "invoice_001.png", row[0])
	assert.Equal(t, "extracted", row[1])
	assert.Equal(t, "Yes", row[2])
	assert.Equal(t, "0", row[3])
	assert.Equal(t, "INV-001", row[4])
	assert.Equal(t, "2025-01-15", row[5])
	assert.Equal(t, "Acme Supplies", row[6])
	assert.Equal(t, "Globex Corp", row[7])
	assert.Equal(t, "25.00", row[8])
	assert.Equal(t, "0.00", row[9])
	assert.Equal(t, "4.50", row[10])
	assert.Equal(t, "3.00", row[11])
	assert.Equal(t, "32.50", row[12])
	assert.Equal(t, "USD", row[13])
	assert.Equal(t, "2", row[14])
	assert.Equal(t, "gemini-2.0-flash", row[15])
	assert.Equal(t, "2025-01-14T08:00:00Z", row[16])
}

func TestWriteExtractions_Pending(t *testing.T) {
	createdAt := time.Date(2025, 1, 14, 8, 0, 0, 0, time.UTC)
	e := domain.Extraction{
		ID:        uuid.New(),
		FileName:  "pending.pdf",
		Status:    domain.ExtractionStatusPending,
		CreatedAt: createdAt,
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteExtractions([]domain.Extraction{e}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 17)
	assert.Equal(t, "pending.pdf", row[0])
	assert.Equal(t, "pending", row[1])
	assert.Equal(t, "No", row[2])
	// Invoice columns should be empty
	for i := 4; i <= 13; i++ {
		assert.Empty(t, row[i], "column %d should be empty for a pending extraction", i)
	}
	assert.Equal(t, "2025-01-14T08:00:00Z", row[16])
}

func TestWriteExtractions_MalformedRecord(t *testing.T) {
	e := domain.Extraction{
		ID:        uuid.New(),
		FileName:  "bad.png",
		Status:    domain.ExtractionStatusExtracted,
		Record:    json.RawMessage(`{not valid json`),
		CreatedAt: time.Now(),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteExtractions([]domain.Extraction{e}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 17)
	assert.Equal(t, "bad.png", row[0])
	for i := 4; i <= 13; i++ {
		assert.Empty(t, row[i], "column %d should be empty for a malformed record", i)
	}
	assert.Equal(t, "0", row[14])
}

func TestWriteExtractions_AmountFormatting(t *testing.T) {
	record := json.RawMessage(`{
		"subtotal": 1000,
		"tax": 99.999,
		"shipping_cost": 0.1,
		"total": 1100.10
	}`)
	e := domain.Extraction{
		FileName:  "money.png",
		Status:    domain.ExtractionStatusExtracted,
		Record:    record,
		CreatedAt: time.Now(),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteExtractions([]domain.Extraction{e}))
	w.Flush()

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Equal(t, "1000.00", row[8])
	assert.Equal(t, "100.00", row[10]) // 99.999 rounds
	assert.Equal(t, "0.10", row[11])
	assert.Equal(t, "1100.10", row[12])
	assert.Empty(t, row[9]) // absent discount stays blank
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "January Invoices", "January_Invoices"},
		{"special chars", "FY 2024-25 / Q3 (Oct–Dec)", "FY_2024-25_Q3_Oct_Dec"},
		{"hyphens and underscores preserved", "my-export_2025", "my-export_2025"},
		{"consecutive underscores collapsed", "test___export", "test_export"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{
			"long name truncated",
			"abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-extra",
			"abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrs",
		},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	filename := BuildFilename("January Invoices")
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "January_Invoices_"+today+".csv", filename)
}
