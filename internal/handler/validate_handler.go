package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"verifact/internal/domain"
	"verifact/internal/validator/invoice"
)

// ValidateHandler handles standalone record validation.
type ValidateHandler struct{}

// NewValidateHandler creates a new ValidateHandler.
func NewValidateHandler() *ValidateHandler {
	return &ValidateHandler{}
}

// Validate handles POST /api/v1/validate
// Runs the consistency checks over a caller-supplied invoice record without
// touching storage or the extraction provider.
func (h *ValidateHandler) Validate(c *gin.Context) {
	record, err := invoice.DecodeRecord(c.Request.Body)
	if err != nil {
		if errors.Is(err, domain.ErrNotAnObject) {
			HandleError(c, err)
			return
		}
		RespondError(c, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON")
		return
	}

	RespondOK(c, invoice.Validate(record))
}
