package invoice

import "encoding/json"

// Invoice is the strongly-typed representation of an extracted invoice record.
// Every field is optional: the extraction model returns null for anything it
// could not read off the document.
type Invoice struct {
	InvoiceNumber      *string    `json:"invoice_number"`
	InvoiceDate        *string    `json:"invoice_date"`
	Supplier           Party      `json:"supplier"`
	Client             Party      `json:"client"`
	Items              []LineItem `json:"items"`
	Subtotal           *float64   `json:"subtotal"`
	Discount           *float64   `json:"discount"`
	DiscountPercentage *float64   `json:"discount_percentage"`
	Tax                *float64   `json:"tax"`
	ShippingCost       *float64   `json:"shipping_cost"`
	RoundingAdjustment *float64   `json:"rounding_adjustment"`
	PaymentTerms       *string    `json:"payment_terms"`
	Currency           *string    `json:"currency"`
	Total              *float64   `json:"total"`
}

// Party represents the supplier or the client.
type Party struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

// LineItem is one row of the invoice.
type LineItem struct {
	Description *string  `json:"description"`
	Quantity    *int64   `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	TotalPrice  *float64 `json:"total_price"`
}

// ToRecord converts the typed invoice into the loose Record the validator
// consumes, round-tripping through JSON so numbers carry their lexical form.
func (inv *Invoice) ToRecord() (Record, error) {
	data, err := json.Marshal(inv)
	if err != nil {
		return nil, err
	}
	return ParseRecord(data)
}

// FromRecord re-marshals a raw record into the typed form. Fields that do not
// fit the declared types are left nil rather than failing the whole decode.
func FromRecord(data json.RawMessage) *Invoice {
	var inv Invoice
	// Best-effort: a partially-malformed record still yields the readable fields.
	_ = json.Unmarshal(data, &inv)
	return &inv
}
