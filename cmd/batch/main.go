package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"verifact/internal/batch"
	"verifact/internal/config"
	"verifact/internal/parser"
	_ "verifact/internal/parser/gemini"
	"verifact/internal/port"
	s3storage "verifact/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	inputDir := flag.String("in", cfg.Batch.InputDir, "directory containing invoice images")
	outputDir := flag.String("out", cfg.Batch.OutputDir, "directory for JSON results")
	skipUpload := flag.Bool("skip-upload", false, "do not upload source images to S3")
	flag.Parse()

	docParser, err := parser.NewParser(&cfg.Parser)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}

	var storage port.ObjectStorage
	if !*skipUpload {
		s3Client, err := s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		storage = s3Client
	}

	r := batch.NewRunner(docParser, storage, cfg.S3.Bucket, *inputDir, *outputDir)
	summary, err := r.Run(context.Background())
	if err != nil {
		return err
	}

	log.Printf("batch run complete: %d processed, %d failed (of %d)",
		summary.Processed, summary.Failed, summary.Total)
	if summary.Failed > 0 {
		os.Exit(1)
	}
	return nil
}
