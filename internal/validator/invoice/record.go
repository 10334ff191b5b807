package invoice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"verifact/internal/domain"
)

// Record is one candidate invoice as extracted upstream: a JSON object decoded
// into a loose mapping. Fields may be absent or explicitly null.
//
// Records must be decoded with DecodeRecord or ParseRecord so that numbers
// arrive as json.Number and keep their lexical form. That is what lets the
// strict-type checks tell an integer (2) from a float (2.0) from a numeric
// string ("2"), the way the upstream JSON actually spelled it.
type Record = map[string]any

// DecodeRecord decodes a single JSON object from r into a Record.
func DecodeRecord(r io.Reader) (Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		// A type error at the top level means the payload was valid JSON
		// but not an object. map[string]any absorbs any nested value.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, domain.ErrNotAnObject
		}
		return nil, fmt.Errorf("decoding invoice record: %w", err)
	}
	return rec, nil
}

// ParseRecord decodes a JSON object held in data into a Record.
func ParseRecord(data []byte) (Record, error) {
	return DecodeRecord(bytes.NewReader(data))
}
