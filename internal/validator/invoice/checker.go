// Package invoice validates extracted invoice records for internal
// mathematical consistency before they are trusted downstream.
//
// All arithmetic runs on exact decimals: equality between line items,
// subtotal, discounts, tax, shipping, rounding and total is bit-exact, never
// within a floating-point epsilon.
package invoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Result is the validation verdict for one record.
type Result struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	TotalErrors int      `json:"total_errors"`
}

// requiredItemFields is the fixed order item fields are reported in.
var requiredItemFields = []string{"description", "quantity", "unit_price", "total_price"}

var (
	minQuantity  = decimal.NewFromInt(1)
	minUnitPrice = decimal.RequireFromString("0.001")
	minPercent   = decimal.NewFromInt(0)
	maxPercent   = decimal.NewFromInt(100)
)

// Validate runs every structural and arithmetic check over one record and
// returns the verdict. Violations accumulate: a single call surfaces every
// error found, in a fixed order, so verdicts are deterministic and diffable.
// The input is never mutated and no state survives the call, so Validate is
// safe to invoke concurrently.
//
// A nil record behaves as one with every field missing.
func Validate(record Record) Result {
	p := &pass{errs: []string{}}

	p.checkRequiredFields(record)
	p.checkParty(record, "supplier")
	p.checkParty(record, "client")
	p.checkItemsStructure(record)
	p.checkCurrency(record)
	p.checkTopLevelNumerics(record)
	p.checkItemCalculations(record)
	p.checkSubtotalAgainstItems(record)
	p.checkTotalReconciliation(record)

	return Result{
		IsValid:     len(p.errs) == 0,
		Errors:      p.errs,
		TotalErrors: len(p.errs),
	}
}

// pass accumulates errors for one validation run.
type pass struct {
	errs []string
}

func (p *pass) add(msg string) {
	p.errs = append(p.errs, msg)
}

func (p *pass) addf(format string, args ...any) {
	p.errs = append(p.errs, fmt.Sprintf(format, args...))
}

func isBlank(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && strings.TrimSpace(s) == ""
}

// checkRequiredFields verifies invoice_number, invoice_date and total are
// present and, if strings, non-blank.
func (p *pass) checkRequiredFields(record Record) {
	for _, field := range []string{"invoice_number", "invoice_date", "total"} {
		v, ok := record[field]
		if !ok || v == nil {
			p.addf("Missing required field: %s", field)
		} else if _, blank := isBlank(v); blank {
			p.addf("Required field '%s' cannot be empty", field)
		}
	}
}

// checkParty verifies the supplier or client object and its name.
func (p *pass) checkParty(record Record, party string) {
	v, ok := record[party]
	if !ok || v == nil {
		p.addf("Missing required field: %s", party)
		return
	}
	obj, ok := v.(map[string]any)
	if !ok {
		p.addf("Field '%s' must be an object", party)
		return
	}

	name, ok := obj["name"]
	if !ok || name == nil {
		p.addf("Missing required field: %s.name", party)
	} else if _, blank := isBlank(name); blank {
		p.addf("Field '%s.name' cannot be empty", party)
	}
}

// checkItemsStructure verifies the items container and each item's shape.
func (p *pass) checkItemsStructure(record Record) {
	v, ok := record["items"]
	if !ok || v == nil {
		p.add("Missing required field: items")
		return
	}
	items, ok := v.([]any)
	if !ok {
		p.add("Field 'items' must be an array")
		return
	}
	if len(items) == 0 {
		p.add("Invoice must contain at least one item")
		return
	}

	for i, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			p.addf("Item %d must be an object", i+1)
			continue
		}

		missing := missingItemFields(item)
		for _, field := range missing {
			p.addf("Item %d: missing required field '%s'", i+1, field)
		}
		if len(missing) > 0 {
			continue
		}
		if _, blank := isBlank(item["description"]); blank {
			p.addf("Item %d: description cannot be empty", i+1)
		}
	}
}

func missingItemFields(item map[string]any) []string {
	var missing []string
	for _, field := range requiredItemFields {
		if v, ok := item[field]; !ok || v == nil {
			missing = append(missing, field)
		}
	}
	return missing
}

// checkCurrency verifies currency, when present, is a non-blank string.
func (p *pass) checkCurrency(record Record) {
	v, ok := record["currency"]
	if !ok || v == nil {
		return
	}
	s, ok := v.(string)
	if !ok {
		p.add("Currency must be a string")
		return
	}
	if strings.TrimSpace(s) == "" {
		p.add("Currency cannot be empty")
	}
}

// bounds holds sign and range constraints for a numeric field.
type bounds struct {
	allowNegative bool
	min           *decimal.Decimal
	max           *decimal.Decimal
}

// checkRange verifies sign and range, reporting at most one violation.
func (p *pass) checkRange(field string, d decimal.Decimal, b bounds) bool {
	if !b.allowNegative && d.IsNegative() {
		p.addf("Field '%s' must be positive", field)
		return false
	}
	if b.min != nil && d.LessThan(*b.min) {
		p.addf("Field '%s' must be at least %s", field, b.min)
		return false
	}
	if b.max != nil && d.GreaterThan(*b.max) {
		p.addf("Field '%s' must be at most %s", field, b.max)
		return false
	}
	return true
}

// checkStrictNumeric applies the strict-type conversion then the range check.
// Absent fields pass; a failed conversion skips the range check.
func (p *pass) checkStrictNumeric(record Record, field string, b bounds) {
	v := record[field]
	if v == nil {
		return
	}
	d, ok := p.toDecimal(v, field, NumericKinds)
	if !ok {
		return
	}
	p.checkRange(field, d, b)
}

// checkTopLevelNumerics validates the monetary fields' type, sign and range.
func (p *pass) checkTopLevelNumerics(record Record) {
	p.checkStrictNumeric(record, "subtotal", bounds{})
	p.checkStrictNumeric(record, "total", bounds{})
	p.checkStrictNumeric(record, "tax", bounds{})
	p.checkStrictNumeric(record, "shipping_cost", bounds{})
	p.checkStrictNumeric(record, "discount", bounds{})
	p.checkStrictNumeric(record, "discount_percentage", bounds{min: &minPercent, max: &maxPercent})
	p.checkStrictNumeric(record, "rounding_adjustment", bounds{allowNegative: true})
}

// clientNameValid reports whether client.name passed its presence and
// blankness checks. Item-level arithmetic is gated on it, mirroring the
// behavior of the system this validator replaced.
func clientNameValid(record Record) bool {
	client, ok := record["client"].(map[string]any)
	if !ok {
		return false
	}
	name, ok := client["name"]
	if !ok || name == nil {
		return false
	}
	_, blank := isBlank(name)
	return !blank
}

// checkItemCalculations validates each structurally-complete item's quantity,
// unit price and total price, and the exact identity
// quantity × unit_price == total_price.
func (p *pass) checkItemCalculations(record Record) {
	if !clientNameValid(record) {
		return
	}
	items, ok := record["items"].([]any)
	if !ok {
		return
	}

	for i, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue // reported by the structural check
		}
		if len(missingItemFields(item)) > 0 {
			continue
		}
		ctx := fmt.Sprintf("Item %d", i+1)

		var qty decimal.Decimal
		qtyOK := false
		if kindOf(item["quantity"]) != KindInt {
			p.addf("%s.quantity must be an integer", ctx)
		} else {
			qty, qtyOK = p.toDecimal(item["quantity"], ctx+".quantity", KindInt)
			if qtyOK {
				p.checkRange(ctx+".quantity", qty, bounds{min: &minQuantity})
			}
		}

		unitPrice, unitOK := p.toDecimal(item["unit_price"], ctx+".unit_price", NumericKinds)
		if unitOK {
			p.checkRange(ctx+".unit_price", unitPrice, bounds{min: &minUnitPrice})
		}

		totalPrice, totalOK := p.toDecimal(item["total_price"], ctx+".total_price", NumericKinds)
		if totalOK {
			p.checkRange(ctx+".total_price", totalPrice, bounds{})
		}

		if qtyOK && unitOK && totalOK {
			expected := qty.Mul(unitPrice)
			if !expected.Equal(totalPrice) {
				p.addf("%s: quantity (%s) × unit_price (%s) = %s, but total_price is %s",
					ctx, qty, unitPrice, expected, totalPrice)
			}
		}
	}
}

// checkSubtotalAgainstItems verifies subtotal equals the exact sum of the
// items' total prices, over every item total that converts.
func (p *pass) checkSubtotalAgainstItems(record Record) {
	subtotal, ok := quietDecimal(record["subtotal"])
	if !ok {
		return
	}
	items, ok := record["items"].([]any)
	if !ok {
		return
	}

	sum := decimal.Zero
	converted := 0
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := quietDecimal(item["total_price"]); ok {
			sum = sum.Add(t)
			converted++
		}
	}

	if converted > 0 && !sum.Equal(subtotal) {
		p.addf("Subtotal mismatch: sum of line items (%s) ≠ subtotal (%s)", sum, subtotal)
	}
}

// checkTotalReconciliation verifies the grand total as one exact expression,
// in fixed order: base, minus discount, plus tax, plus shipping, plus
// rounding adjustment. The base is the subtotal when it converts, otherwise
// the sum of item totals.
func (p *pass) checkTotalReconciliation(record Record) {
	total, ok := quietDecimal(record["total"])
	if !ok {
		return
	}

	calculated := decimal.Zero
	if subtotal, ok := quietDecimal(record["subtotal"]); ok {
		calculated = subtotal
	} else if items, ok := record["items"].([]any); ok {
		for _, raw := range items {
			if item, ok := raw.(map[string]any); ok {
				if t, ok := quietDecimal(item["total_price"]); ok {
					calculated = calculated.Add(t)
				}
			}
		}
	}

	discount, haveDiscount := quietDecimal(record["discount"])
	percentage, havePercentage := quietDecimal(record["discount_percentage"])
	switch {
	case haveDiscount:
		if havePercentage {
			// Both given: they must agree, but the stated discount is the one
			// applied either way.
			expected := percentOf(calculated, percentage)
			if !expected.Equal(discount) {
				p.add("Discount inconsistency")
			}
		}
		calculated = calculated.Sub(discount)
	case havePercentage:
		calculated = calculated.Sub(percentOf(calculated, percentage))
	}

	if tax, ok := quietDecimal(record["tax"]); ok {
		calculated = calculated.Add(tax)
	}
	if shipping, ok := quietDecimal(record["shipping_cost"]); ok {
		calculated = calculated.Add(shipping)
	}
	if rounding, ok := quietDecimal(record["rounding_adjustment"]); ok {
		calculated = calculated.Add(rounding)
	}

	if !calculated.Equal(total) {
		p.addf("Total calculation mismatch: calculated total (%s) ≠ given total (%s)", calculated, total)
	}
}

// percentOf computes base × pct / 100 exactly. Shift keeps the division by
// 100 a pure exponent change, so no intermediate is ever rounded.
func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Shift(-2)
}
