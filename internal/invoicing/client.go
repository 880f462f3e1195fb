// Package invoicing is a client for the partner-solution invoicing API.
package invoicing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// ErrInvalidRequest is wrapped by client-side validation failures.
var ErrInvalidRequest = errors.New("invalid invoicing request")

// APIError is returned when the partner answers with an error body or a
// non-2xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("invoicing api: %d: %s", e.Status, e.Message)
}

// Client calls the partner invoicing API. Every request carries the API key
// in the x-api-key header.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	APIKey  string
}

// NewClient returns a client for baseURL authenticated with apiKey.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: defaultTimeout},
		BaseURL: baseURL,
		APIKey:  apiKey,
	}
}

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func validMonth(m string) error {
	if !monthPattern.MatchString(m) {
		return fmt.Errorf("%w: month %q is not YYYY-MM", ErrInvalidRequest, m)
	}
	return nil
}

// CreateBatch invoices a set of bookings.
func (c *Client) CreateBatch(ctx context.Context, req BatchRequest) (BatchResult, error) {
	if err := validMonth(req.Month); err != nil {
		return BatchResult{}, err
	}
	if len(req.BookingIDs) == 0 {
		return BatchResult{}, fmt.Errorf("%w: no bookings", ErrInvalidRequest)
	}
	var out BatchResult
	err := c.post(ctx, "/invoices/batch", req, &out)
	return out, err
}

// CreateManual creates a single invoice or credit note. A credit note must
// reference the invoice it reverses.
func (c *Client) CreateManual(ctx context.Context, req ManualRequest) (Invoice, error) {
	req.DocumentType = strings.ToUpper(strings.TrimSpace(req.DocumentType))
	switch req.DocumentType {
	case DocumentInvoice:
	case DocumentCreditNote:
		if strings.TrimSpace(req.OriginalInvoiceID) == "" {
			return Invoice{}, fmt.Errorf("%w: credit note needs original_invoice_id", ErrInvalidRequest)
		}
	default:
		return Invoice{}, fmt.Errorf("%w: document_type %q", ErrInvalidRequest, req.DocumentType)
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return Invoice{}, fmt.Errorf("%w: customer_name required", ErrInvalidRequest)
	}
	if !req.Amount.IsPositive() {
		return Invoice{}, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if req.Currency == "" {
		req.Currency = "EUR"
	}
	var out Invoice
	err := c.post(ctx, "/invoices/manual", req, &out)
	return out, err
}

// RetryFailed resubmits the invoices of a month that the partner rejected.
func (c *Client) RetryFailed(ctx context.Context, req MonthRequest) (RetryResult, error) {
	if err := validMonth(req.Month); err != nil {
		return RetryResult{}, err
	}
	var out RetryResult
	err := c.post(ctx, "/invoices/retry-failed", req, &out)
	return out, err
}

// FinalizeMonth closes a month and returns the resulting pratica.
func (c *Client) FinalizeMonth(ctx context.Context, req MonthRequest) (FinalizeResult, error) {
	if err := validMonth(req.Month); err != nil {
		return FinalizeResult{}, err
	}
	var out FinalizeResult
	err := c.post(ctx, "/months/finalize", req, &out)
	return out, err
}

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return err
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.TrimPrefix(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(data, &envelope)
	if envelope.Error != "" {
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if dest == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode invoicing response: %w", err)
	}
	return nil
}
