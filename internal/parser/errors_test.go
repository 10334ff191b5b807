package parser_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verifact/internal/parser"
)

func TestNewRateLimitError_Defaults(t *testing.T) {
	err := parser.NewRateLimitError("gemini", errors.New("quota exhausted"), 0)

	assert.Equal(t, "gemini", err.Provider)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "gemini rate limited")
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestNewRateLimitError_ExplicitRetryAfter(t *testing.T) {
	err := parser.NewRateLimitError("gemini", errors.New("busy"), 30)
	assert.Equal(t, 30*time.Second, err.RetryAfter)
}

func TestRateLimitError_Unwrap(t *testing.T) {
	cause := errors.New("quota exhausted")
	err := parser.NewRateLimitError("gemini", cause, 10)

	wrapped := fmt.Errorf("extracting invoice: %w", err)

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(wrapped, &rlErr))
	assert.ErrorIs(t, wrapped, cause)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, parser.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, parser.ParseRetryAfterHeader("soon"))
	assert.Equal(t, 45, parser.ParseRetryAfterHeader("45"))
}
