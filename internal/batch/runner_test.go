package batch_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"verifact/internal/batch"
	"verifact/internal/port"
	"verifact/mocks"
)

func writeImage(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("fake image bytes"), 0o644))
}

func TestRunner_Run_WritesVerdictFiles(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "results")
	writeImage(t, inputDir, "invoice_001.png")

	docParser := new(mocks.MockDocumentParser)
	docParser.On("Parse", mock.Anything, mock.MatchedBy(func(in port.ParseInput) bool {
		return in.FileName == "invoice_001.png" && in.ContentType == "image/png"
	})).Return(&port.ParseOutput{
		Record: []byte(`{
			"invoice_number": "INV-001",
			"invoice_date": "2025-01-15",
			"supplier": {"name": "Acme"},
			"client": {"name": "Globex"},
			"items": [
				{"description": "Widget", "quantity": 2, "unit_price": 10.0, "total_price": 20.0}
			],
			"subtotal": 20.0,
			"total": 20.0
		}`),
		ModelUsed: "gemini-2.0-flash",
	}, nil)

	r := batch.NewRunner(docParser, nil, "", inputDir, outputDir)
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Processed)
	assert.Zero(t, summary.Failed)

	data, err := os.ReadFile(filepath.Join(outputDir, "invoice_001.json"))
	require.NoError(t, err)

	var out batch.Output
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "invoice_001.png", out.SourceFile)
	assert.Equal(t, "gemini-2.0-flash", out.ModelUsed)
	require.NotNil(t, out.Validation)
	assert.True(t, out.Validation.IsValid)
	assert.Equal(t, "INV-001", out.Record["invoice_number"])
}

func TestRunner_Run_ContinuesAfterFailure(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeImage(t, inputDir, "bad.png")
	writeImage(t, inputDir, "good.png")

	docParser := new(mocks.MockDocumentParser)
	docParser.On("Parse", mock.Anything, mock.MatchedBy(func(in port.ParseInput) bool {
		return in.FileName == "bad.png"
	})).Return(nil, errors.New("model returned no JSON"))
	docParser.On("Parse", mock.Anything, mock.MatchedBy(func(in port.ParseInput) bool {
		return in.FileName == "good.png"
	})).Return(&port.ParseOutput{
		Record:    []byte(`{"invoice_number": "INV-002", "invoice_date": "2025-01-16", "total": 5}`),
		ModelUsed: "gemini-2.0-flash",
	}, nil)

	r := batch.NewRunner(docParser, nil, "", inputDir, outputDir)
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Failed)

	_, err = os.Stat(filepath.Join(outputDir, "good.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "bad.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunner_Run_EmptyDirectory(t *testing.T) {
	r := batch.NewRunner(new(mocks.MockDocumentParser), nil, "", t.TempDir(), t.TempDir())
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
}

func TestRunner_Run_UploadsWhenStorageSet(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeImage(t, inputDir, "invoice.jpg")

	docParser := new(mocks.MockDocumentParser)
	docParser.On("Parse", mock.Anything, mock.Anything).Return(&port.ParseOutput{
		Record:    []byte(`{"invoice_number": "INV-003", "invoice_date": "2025-01-17", "total": 10}`),
		ModelUsed: "gemini-2.0-flash",
	}, nil)

	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "test-bucket" && in.Key == "invoices/batch/invoice.jpg"
	})).Return(&port.UploadOutput{}, nil)

	r := batch.NewRunner(docParser, storage, "test-bucket", inputDir, outputDir)
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	storage.AssertExpectations(t)
}
