package invoice

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind classifies the representation of a record value for strict-type checks.
type Kind uint8

const (
	// KindInt is an exact integer: a JSON number with no fraction or exponent,
	// or a native Go integer.
	KindInt Kind = 1 << iota
	// KindFloat is a JSON number written with a fraction or exponent, or a
	// native Go float.
	KindFloat
	// KindDecimal is a decimal.Decimal built in-process.
	KindDecimal
)

// NumericKinds is the strict-type constraint applied to monetary fields:
// any numeric representation, but never a string.
const NumericKinds = KindInt | KindFloat | KindDecimal

var kindNames = []struct {
	kind Kind
	name string
}{
	{KindInt, "int"},
	{KindFloat, "float"},
	{KindDecimal, "Decimal"},
}

// String renders the constraint for error messages, e.g. "int, float, Decimal".
func (k Kind) String() string {
	var names []string
	for _, kn := range kindNames {
		if k&kn.kind != 0 {
			names = append(names, kn.name)
		}
	}
	return strings.Join(names, ", ")
}

// kindOf classifies a value. Zero means "not a numeric representation at all".
func kindOf(v any) Kind {
	switch n := v.(type) {
	case json.Number:
		if strings.ContainsAny(n.String(), ".eE") {
			return KindFloat
		}
		return KindInt
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case decimal.Decimal:
		return KindDecimal
	}
	return 0
}

// toDecimal converts a record value to an exact decimal, appending conversion
// failures to the accumulator. The second return is false when there is no
// usable value, whether the field was absent, null, blank, or invalid.
//
// When require is non-zero the value's representation must be one of the
// required kinds; strings are rejected rather than parsed. When require is
// zero, numeric strings are trimmed and parsed exactly.
//
// Numbers never pass through binary floating point on their way to decimal:
// json.Number keeps its lexical form, and native floats go through their
// shortest round-tripping decimal string.
func (p *pass) toDecimal(v any, field string, require Kind) (decimal.Decimal, bool) {
	if v == nil {
		return decimal.Decimal{}, false
	}

	if require != 0 && kindOf(v)&require == 0 {
		p.addf("Field '%s' must be of type %s", field, require)
		return decimal.Decimal{}, false
	}

	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			p.addf("Field '%s' contains invalid numeric value", field)
			return decimal.Decimal{}, false
		}
		return d, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			p.addf("Field '%s' contains invalid numeric value", field)
			return decimal.Decimal{}, false
		}
		return d, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint, uint8, uint16, uint32, uint64:
		d, _ := decimal.NewFromString(strconv.FormatUint(toUint64(n), 10))
		return d, true
	case float32:
		return p.floatToDecimal(float64(n), field)
	case float64:
		return p.floatToDecimal(n, field)
	case decimal.Decimal:
		return n, true
	}

	p.addf("Field '%s' must be numeric", field)
	return decimal.Decimal{}, false
}

// floatToDecimal converts a binary float via its shortest round-tripping
// decimal string, so 0.1 becomes exactly 0.1 rather than its binary neighbor.
func (p *pass) floatToDecimal(f float64, field string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strconv.FormatFloat(f, 'g', -1, 64))
	if err != nil {
		// FormatFloat spells NaN and infinities in ways decimal cannot parse.
		p.addf("Field '%s' contains invalid numeric value", field)
		return decimal.Decimal{}, false
	}
	return d, true
}

func toUint64(v any) uint64 {
	switch n := v.(type) {
	case uint:
		return uint64(n)
	case uint8:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint32:
		return uint64(n)
	case uint64:
		return n
	}
	return 0
}

// quietDecimal converts leniently (numeric strings allowed) without reporting
// errors. The cross-field arithmetic steps use it to re-derive values whose
// field-level violations were already reported.
func quietDecimal(v any) (decimal.Decimal, bool) {
	scratch := &pass{}
	return scratch.toDecimal(v, "", 0)
}
