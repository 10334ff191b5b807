package parser_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verifact/internal/parser"
)

func TestExtractRecord_PlainJSON(t *testing.T) {
	raw, rec, err := parser.ExtractRecord(`{"invoice_number": "INV-001", "total": 25.0}`)
	require.NoError(t, err)

	assert.JSONEq(t, `{"invoice_number": "INV-001", "total": 25.0}`, string(raw))
	assert.Equal(t, "INV-001", rec["invoice_number"])
	assert.Equal(t, json.Number("25.0"), rec["total"])
}

func TestExtractRecord_JSONBuriedInProse(t *testing.T) {
	text := "Sure! Here is the extracted invoice:\n```json\n{\"invoice_number\": \"INV-002\"}\n```\nLet me know if you need anything else."

	_, rec, err := parser.ExtractRecord(text)
	require.NoError(t, err)
	assert.Equal(t, "INV-002", rec["invoice_number"])
}

func TestExtractRecord_RemovesTrailingCommas(t *testing.T) {
	text := `{
		"invoice_number": "INV-003",
		"items": [
			{"description": "Widget", "quantity": 1,},
		],
	}`

	_, rec, err := parser.ExtractRecord(text)
	require.NoError(t, err)
	assert.Equal(t, "INV-003", rec["invoice_number"])
	items := rec["items"].([]any)
	require.Len(t, items, 1)
}

func TestExtractRecord_NoJSON(t *testing.T) {
	_, _, err := parser.ExtractRecord("I could not read this invoice.")
	assert.ErrorIs(t, err, parser.ErrNoJSON)
}

func TestExtractRecord_MalformedJSON(t *testing.T) {
	_, _, err := parser.ExtractRecord(`{"invoice_number": }`)
	require.Error(t, err)
	assert.NotErrorIs(t, err, parser.ErrNoJSON)
}

func TestExtractRecord_NumbersKeepLexicalForm(t *testing.T) {
	_, rec, err := parser.ExtractRecord(`{"quantity": 2, "unit_price": 2.0}`)
	require.NoError(t, err)

	assert.Equal(t, json.Number("2"), rec["quantity"])
	assert.Equal(t, json.Number("2.0"), rec["unit_price"])
}
