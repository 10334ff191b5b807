package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"verifact/internal/domain"
	"verifact/internal/validator/invoice"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (17 columns).
var columns = []string{
	"File Name",
	"Status",
	"Valid",
	"Error Count",
	"Invoice Number",
	"Invoice Date",
	"Supplier Name",
	"Client Name",
	"Subtotal",
	"Discount",
	"Tax",
	"Shipping",
	"Total",
	"Currency",
	"Line Item Count",
	"Model Used",
	"Created At",
}

// Writer wraps csv.Writer for exporting extraction results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the 17-column header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteExtractions converts a batch of extractions to CSV rows and writes them.
func (w *Writer) WriteExtractions(extractions []domain.Extraction) error {
	for i := range extractions {
		row := extractionToRow(&extractions[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// extractionToRow converts a single extraction to a 17-element string slice.
// If extraction did not complete or the stored record is invalid JSON,
// metadata columns are filled and invoice columns are left empty.
func extractionToRow(e *domain.Extraction) []string {
	row := make([]string, len(columns))

	// Metadata columns (always filled)
	row[0] = e.FileName
	row[1] = string(e.Status)
	row[2] = formatBool(e.IsValid)
	row[3] = strconv.Itoa(e.TotalErrors)
	row[15] = e.ModelUsed
	row[16] = e.CreatedAt.Format(time.RFC3339)

	// Invoice columns: only if extraction completed and JSON is valid
	if e.Status != domain.ExtractionStatusExtracted || len(e.Record) == 0 {
		return row
	}

	inv := invoice.FromRecord(e.Record)

	row[4] = formatString(inv.InvoiceNumber)
	row[5] = formatString(inv.InvoiceDate)
	row[6] = formatString(inv.Supplier.Name)
	row[7] = formatString(inv.Client.Name)
	row[8] = formatAmount(inv.Subtotal)
	row[9] = formatAmount(inv.Discount)
	row[10] = formatAmount(inv.Tax)
	row[11] = formatAmount(inv.ShippingCost)
	row[12] = formatAmount(inv.Total)
	row[13] = formatString(inv.Currency)
	row[14] = strconv.Itoa(len(inv.Items))

	return row
}

// formatAmount renders an optional amount, empty when the field is absent.
func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.csv
func BuildFilename(name string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
