package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"verifact/internal/config"
	"verifact/internal/domain"
	"verifact/internal/port"
	"verifact/internal/validator/invoice"
)

// ExtractionUploadInput is the DTO for extraction upload requests.
type ExtractionUploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// ExtractionService defines the invoice extraction contract.
type ExtractionService interface {
	CreateAndExtract(ctx context.Context, input ExtractionUploadInput) (*domain.Extraction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error)
	List(ctx context.Context, filter port.ListFilter) ([]domain.Extraction, int, error)
}

type extractionService struct {
	repo    port.ExtractionRepository
	storage port.ObjectStorage
	parser  port.DocumentParser
	cfg     *config.S3Config
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	repo port.ExtractionRepository,
	storage port.ObjectStorage,
	docParser port.DocumentParser,
	cfg *config.S3Config,
) ExtractionService {
	return &extractionService{
		repo:    repo,
		storage: storage,
		parser:  docParser,
		cfg:     cfg,
	}
}

// CreateAndExtract uploads the invoice image, runs LLM extraction, validates
// the extracted record, and persists the verdict. The whole pipeline is
// synchronous: the returned extraction carries the final status.
func (s *extractionService) CreateAndExtract(ctx context.Context, input ExtractionUploadInput) (*domain.Extraction, error) {
	// Validate file extension
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	contentType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Validate file size
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	fileBytes, err := io.ReadAll(input.File)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	// Magic-byte content type detection
	detectedType := http.DetectContentType(fileBytes)
	if _, validContent := domain.AllowedContentTypes[detectedType]; !validContent {
		return nil, domain.ErrUnsupportedFileType
	}

	id := uuid.New()
	storageKey := fmt.Sprintf("invoices/%s/%s", id, input.Header.Filename)

	e := &domain.Extraction{
		ID:          id,
		FileName:    input.Header.Filename,
		ContentType: contentType,
		SizeBytes:   input.Header.Size,
		StorageKey:  storageKey,
		Status:      domain.ExtractionStatusPending,
	}

	log.Printf("extractionService.CreateAndExtract: processing %s (%s, %d bytes)",
		input.Header.Filename, contentType, input.Header.Size)

	if err := s.repo.Create(ctx, e); err != nil {
		log.Printf("extractionService.CreateAndExtract: failed to create extraction: %v", err)
		return nil, fmt.Errorf("creating extraction: %w", err)
	}

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         storageKey,
		Body:        bytes.NewReader(fileBytes),
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("extractionService.CreateAndExtract: S3 upload failed for %s: %v", e.ID, err)
		s.failExtraction(ctx, e, fmt.Sprintf("uploading file: %v", err))
		return nil, domain.ErrUploadFailed
	}

	output, err := s.parser.Parse(ctx, port.ParseInput{
		FileBytes:   fileBytes,
		ContentType: contentType,
		FileName:    input.Header.Filename,
	})
	if err != nil {
		s.failExtraction(ctx, e, fmt.Sprintf("extracting invoice: %v", err))
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	record, err := invoice.ParseRecord(output.Record)
	if err != nil {
		s.failExtraction(ctx, e, fmt.Sprintf("decoding extracted record: %v", err))
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	result := invoice.Validate(record)
	errorsJSON, err := json.Marshal(result.Errors)
	if err != nil {
		return nil, fmt.Errorf("encoding verdict: %w", err)
	}

	e.Status = domain.ExtractionStatusExtracted
	e.ModelUsed = output.ModelUsed
	e.Record = output.Record
	e.IsValid = result.IsValid
	e.Errors = errorsJSON
	e.TotalErrors = result.TotalErrors

	if err := s.repo.Update(ctx, e); err != nil {
		log.Printf("extractionService.CreateAndExtract: failed to save results for %s: %v", e.ID, err)
		return nil, fmt.Errorf("saving extraction results: %w", err)
	}

	log.Printf("extractionService.CreateAndExtract: extraction %s completed, valid=%t errors=%d",
		e.ID, e.IsValid, e.TotalErrors)
	return e, nil
}

func (s *extractionService) failExtraction(ctx context.Context, e *domain.Extraction, reason string) {
	log.Printf("extractionService.failExtraction: extraction %s failed: %s", e.ID, reason)
	e.Status = domain.ExtractionStatusFailed
	e.FailureReason = reason
	if err := s.repo.Update(ctx, e); err != nil {
		log.Printf("extractionService.failExtraction: failed to update status for %s: %v", e.ID, err)
	}
}

func (s *extractionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *extractionService) List(ctx context.Context, filter port.ListFilter) ([]domain.Extraction, int, error) {
	return s.repo.List(ctx, filter)
}
