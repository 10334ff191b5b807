package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"verifact/internal/export"
	"verifact/internal/port"
	"verifact/internal/service"
)

// ExtractionHandler handles invoice extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// Create handles POST /api/v1/extractions
// Accepts a multipart invoice image or PDF, runs the extraction pipeline,
// and returns the extraction with its validation verdict.
func (h *ExtractionHandler) Create(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	e, err := h.extractionService.CreateAndExtract(c.Request.Context(), service.ExtractionUploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, e)
}

// List handles GET /api/v1/extractions
func (h *ExtractionHandler) List(c *gin.Context) {
	filter, ok := listFilterFromQuery(c)
	if !ok {
		return
	}

	extractions, total, err := h.extractionService.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, extractions, PagMeta{Total: total, Offset: filter.Offset, Limit: filter.Limit})
}

// GetByID handles GET /api/v1/extractions/:id
func (h *ExtractionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return
	}

	e, err := h.extractionService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, e)
}

// ExportCSV handles GET /api/v1/extractions/export
// Streams all matching extractions as a CSV download.
func (h *ExtractionHandler) ExportCSV(c *gin.Context) {
	filter, ok := listFilterFromQuery(c)
	if !ok {
		return
	}
	// Export ignores pagination defaults: pull everything that matches.
	filter.Offset = 0
	filter.Limit = 10000

	extractions, _, err := h.extractionService.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("extractions")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(export.BOM); err != nil {
		return
	}
	w := export.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteExtractions(extractions); err != nil {
		return
	}
	w.Flush()
}

// listFilterFromQuery parses pagination and validity filters from the query
// string. Returns false if a response has already been written.
func listFilterFromQuery(c *gin.Context) (port.ListFilter, bool) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	filter := port.ListFilter{Offset: offset, Limit: limit}
	if validStr := c.Query("is_valid"); validStr != "" {
		valid, err := strconv.ParseBool(validStr)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_FILTER", "is_valid must be true or false")
			return port.ListFilter{}, false
		}
		filter.IsValid = &valid
	}
	return filter, true
}
