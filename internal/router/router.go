package router

import (
	"github.com/gin-gonic/gin"

	"verifact/internal/config"
	"verifact/internal/handler"
	"verifact/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.CORSConfig,
	extractionH *handler.ExtractionHandler,
	validateH *handler.ValidateHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Extraction pipeline
	extractions := v1.Group("/extractions")
	extractions.POST("", extractionH.Create)
	extractions.GET("", extractionH.List)
	extractions.GET("/export", extractionH.ExportCSV)
	extractions.GET("/:id", extractionH.GetByID)

	// Standalone record validation
	v1.POST("/validate", validateH.Validate)

	return r
}
