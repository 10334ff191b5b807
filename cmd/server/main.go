package main

import (
	"fmt"
	"log"

	"verifact/internal/config"
	"verifact/internal/handler"
	"verifact/internal/parser"
	_ "verifact/internal/parser/gemini"
	"verifact/internal/repository/postgres"
	"verifact/internal/router"
	"verifact/internal/service"
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

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	extractionRepo := postgres.NewExtractionRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize extraction provider
	docParser, err := parser.NewParser(&cfg.Parser)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}

	// Initialize services
	extractionSvc := service.NewExtractionService(extractionRepo, s3Client, docParser, &cfg.S3)

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(extractionSvc)
	validateH := handler.NewValidateHandler()
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(&cfg.CORS, extractionH, validateH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
