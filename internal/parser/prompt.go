package parser

// BuildInvoicePrompt returns the extraction prompt for invoice images.
func BuildInvoicePrompt() string {
	return `You are an intelligent document processing assistant. You are given an invoice image.
Your task is to extract the relevant information and return a structured JSON object strictly following the format below.

Return only the JSON structure exactly as shown, using null if a value is not found. Pay attention to common invoice terminology and numeric patterns.

IMPORTANT INSTRUCTIONS:
- "quantity" must be a whole number, "unit_price" and "total_price" plain numbers without currency symbols.
- Normalize the invoice date to YYYY-MM-DD.
- Do not invent values: use null for anything the document does not state.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation: just the raw JSON object.

The JSON object must follow this schema:
{
  "invoice_number": string or null,
  "invoice_date": string (YYYY-MM-DD) or null,
  "supplier": {
    "name": string or null,
    "address": string or null,
    "phone": string or null,
    "email": string or null
  },
  "client": {
    "name": string or null,
    "address": string or null,
    "phone": string or null,
    "email": string or null
  },
  "items": [
    {
      "description": string or null,
      "quantity": number or null,
      "unit_price": number or null,
      "total_price": number or null
    }
  ],
  "subtotal": number or null,
  "discount": number or null,
  "discount_percentage": number or null,
  "tax": number or null,
  "shipping_cost": number or null,
  "rounding_adjustment": number or null,
  "payment_terms": string or null,
  "currency": string or null,
  "total": number or null
}`
}
