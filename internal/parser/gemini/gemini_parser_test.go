package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verifact/internal/config"
	"verifact/internal/parser"
	"verifact/internal/parser/gemini"
	"verifact/internal/port"
)

func newTestParser(serverURL string) *gemini.Parser {
	cfg := &config.ParserConfig{
		Provider:     "gemini",
		APIKey:       "test-gemini-key",
		DefaultModel: "gemini-2.0-flash",
		TimeoutSecs:  30,
	}
	return gemini.NewParserWithEndpoint(cfg, serverURL)
}

func successResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role": "model",
					"parts": []map[string]interface{}{
						{"text": text},
					},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func TestParse_Success(t *testing.T) {
	llmJSON := `{"invoice_number":"INV-001","invoice_date":"2025-01-15","total":25.0}`
	responseBody := successResponse(llmJSON)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		contents := reqBody["contents"].([]interface{})
		require.Len(t, contents, 1)
		msg := contents[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		parts := msg["parts"].([]interface{})
		require.Len(t, parts, 2)

		// First part: inline_data
		dataPart := parts[0].(map[string]interface{})
		inlineData := dataPart["inline_data"].(map[string]interface{})
		assert.Equal(t, "image/png", inlineData["mime_type"])
		assert.NotEmpty(t, inlineData["data"])

		// Second part: text prompt
		textPart := parts[1].(map[string]interface{})
		assert.NotEmpty(t, textPart["text"])

		genConfig := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", genConfig["responseMimeType"])
		assert.Equal(t, float64(8192), genConfig["maxOutputTokens"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte{0x89, 0x50, 0x4E, 0x47},
		ContentType: "image/png",
		FileName:    "invoice.png",
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "gemini-2.0-flash", result.ModelUsed)
	assert.Equal(t, llmJSON, result.RawText)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(result.Record, &record))
	assert.Equal(t, "INV-001", record["invoice_number"])
}

func TestParse_CleansMarkdownFencedOutput(t *testing.T) {
	text := "Here is the extracted data:\n```json\n{\n  \"invoice_number\": \"INV-007\",\n  \"total\": 12.5,\n}\n```"
	responseBody := successResponse(text)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
	})

	require.NoError(t, err)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(result.Record, &record))
	assert.Equal(t, "INV-007", record["invoice_number"])
}

func TestParse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
	})

	assert.Nil(t, result)
	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "gemini", rlErr.Provider)
	assert.Equal(t, float64(30), rlErr.RetryAfter.Seconds())
}

func TestParse_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"status":"INTERNAL"}}`))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini API error (status 500)")
}

func TestParse_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestParse_NoJSONInOutput(t *testing.T) {
	responseBody := successResponse("This is not JSON at all, sorry!")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, parser.ErrNoJSON)
}

func TestParse_UnsupportedContentType(t *testing.T) {
	p := newTestParser("http://unused")

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("text content"),
		ContentType: "text/plain",
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestParse_ConnectionRefused(t *testing.T) {
	p := newTestParser("http://localhost:1")

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calling gemini API")
}
