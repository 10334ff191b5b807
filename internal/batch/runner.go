package batch

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"verifact/internal/domain"
	"verifact/internal/port"
	"verifact/internal/validator/invoice"
)

// Output is the JSON document written for each processed image.
type Output struct {
	SourceFile string          `json:"source_file"`
	ModelUsed  string          `json:"model_used"`
	Record     invoice.Record  `json:"record"`
	Validation *invoice.Result `json:"validation"`
}

// Summary reports the outcome of a directory run.
type Summary struct {
	Total     int
	Processed int
	Failed    int
}

// Runner processes a directory of invoice images through the extraction
// pipeline, writing one JSON result per image. Storage is optional: when set,
// source images are also uploaded.
type Runner struct {
	parser  port.DocumentParser
	storage port.ObjectStorage
	bucket  string

	InputDir  string
	OutputDir string
}

// NewRunner creates a Runner. storage may be nil to skip source uploads.
func NewRunner(docParser port.DocumentParser, storage port.ObjectStorage, bucket, inputDir, outputDir string) *Runner {
	return &Runner{
		parser:    docParser,
		storage:   storage,
		bucket:    bucket,
		InputDir:  inputDir,
		OutputDir: outputDir,
	}
}

// Run processes every valid image under InputDir. Per-file failures are
// logged and counted; the run continues with the remaining files.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	images, err := ListImages(r.InputDir)
	if err != nil {
		return Summary{}, err
	}
	if len(images) == 0 {
		log.Printf("batch: no valid image files found in %s", r.InputDir)
		return Summary{}, nil
	}

	log.Printf("batch: found %d image files to process", len(images))

	summary := Summary{Total: len(images)}
	for _, path := range images {
		if err := r.processOne(ctx, path); err != nil {
			log.Printf("batch: failed to process %s: %v", path, err)
			summary.Failed++
			continue
		}
		summary.Processed++
	}

	log.Printf("batch: successfully processed %d out of %d files", summary.Processed, summary.Total)
	return summary, nil
}

func (r *Runner) processOne(ctx context.Context, path string) error {
	log.Printf("batch: processing image %s", path)

	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	name := filepath.Base(path)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	contentType := domain.AllowedExtensions[ext]

	if r.storage != nil {
		key := "invoices/batch/" + SanitizeFilename(name)
		_, err := r.storage.Upload(ctx, port.UploadInput{
			Bucket:      r.bucket,
			Key:         key,
			Body:        bytes.NewReader(fileBytes),
			ContentType: contentType,
			Size:        int64(len(fileBytes)),
		})
		if err != nil {
			// Upload failures do not block extraction: the local result
			// file is the primary artifact in batch mode.
			log.Printf("batch: failed to upload %s: %v", name, err)
		}
	}

	output, err := r.parser.Parse(ctx, port.ParseInput{
		FileBytes:   fileBytes,
		ContentType: contentType,
		FileName:    name,
	})
	if err != nil {
		return fmt.Errorf("extracting invoice: %w", err)
	}

	record, err := invoice.ParseRecord(output.Record)
	if err != nil {
		return fmt.Errorf("decoding extracted record: %w", err)
	}
	result := invoice.Validate(record)

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	outPath := filepath.Join(r.OutputDir, SanitizeFilename(stem)+".json")
	if err := WriteJSON(outPath, Output{
		SourceFile: name,
		ModelUsed:  output.ModelUsed,
		Record:     roundNumbers(record).(invoice.Record),
		Validation: &result,
	}); err != nil {
		return err
	}

	log.Printf("batch: wrote %s (valid=%t errors=%d)", outPath, result.IsValid, result.TotalErrors)
	return nil
}
