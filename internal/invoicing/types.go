package invoicing

import "github.com/shopspring/decimal"

// Document types accepted by CreateManual.
const (
	DocumentInvoice    = "INVOICE"
	DocumentCreditNote = "CREDIT_NOTE"
)

// BatchRequest asks the partner to invoice every listed booking of a month.
type BatchRequest struct {
	Month      string  `json:"month"` // "2006-01"
	BookingIDs []int64 `json:"booking_ids"`
}

// BatchResult reports the outcome of a batch creation.
type BatchResult struct {
	Created    int      `json:"created"`
	Failed     int      `json:"failed"`
	InvoiceIDs []string `json:"invoice_ids"`
}

// ManualRequest creates one invoice or credit note outside the batch flow.
type ManualRequest struct {
	DocumentType      string          `json:"document_type"`
	CustomerName      string          `json:"customer_name"`
	CustomerTaxCode   string          `json:"customer_tax_code,omitempty"`
	CustomerEmail     string          `json:"customer_email,omitempty"`
	Description       string          `json:"description"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	BookingID         *int64          `json:"booking_id,omitempty"`
	OriginalInvoiceID string          `json:"original_invoice_id,omitempty"`
}

// Invoice is a document created by the partner.
type Invoice struct {
	ID           string          `json:"id"`
	Number       string          `json:"number"`
	DocumentType string          `json:"document_type"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
}

// MonthRequest addresses one invoicing month.
type MonthRequest struct {
	Month string `json:"month"`
}

// RetryResult reports the outcome of retrying the failed invoices of a month.
type RetryResult struct {
	Retried   int `json:"retried"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// FinalizeResult describes the pratica (monthly invoice batch) produced by
// finalizing a month.
type FinalizeResult struct {
	PraticaID    string          `json:"pratica_id"`
	Month        string          `json:"month"`
	InvoiceCount int             `json:"invoice_count"`
	Total        decimal.Decimal `json:"total"`
}
