package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"verifact/internal/validator/invoice"
)

// ErrNoJSON indicates the model response contained no JSON object at all.
var ErrNoJSON = errors.New("no JSON object found in model response")

var (
	jsonBlockRe     = regexp.MustCompile(`\{[\s\S]+\}`)
	trailingComma   = regexp.MustCompile(`,\s*}`)
	trailingCommaAr = regexp.MustCompile(`,\s*]`)
)

// ExtractRecord pulls the invoice record out of a raw model response.
// Models wrap JSON in prose or code fences often enough that the response is
// treated as untrusted text: the first {...} block is located, cleaned up,
// and decoded. The returned bytes are the cleaned JSON.
func ExtractRecord(text string) (json.RawMessage, invoice.Record, error) {
	match := jsonBlockRe.FindString(text)
	if match == "" {
		return nil, nil, ErrNoJSON
	}

	cleaned := cleanJSON(match)
	rec, err := invoice.ParseRecord([]byte(cleaned))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing extracted JSON: %w", err)
	}
	return json.RawMessage(cleaned), rec, nil
}

// cleanJSON repairs the damage models commonly do to JSON: stray newlines and
// trailing commas before a closing brace or bracket.
func cleanJSON(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", ""))
	s = trailingComma.ReplaceAllString(s, "}")
	s = trailingCommaAr.ReplaceAllString(s, "]")
	return s
}
