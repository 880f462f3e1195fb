package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// WebhookEvent is an incoming Stripe payment or refund notification stored
// for operator review.
//
// Fields:
//  ID            – stripe_webhook_events.id
//  StripeEventID – Stripe event id (evt_…).
//  Type          – event type (payment_intent.succeeded, charge.refunded…).
//  Amount        – amount in major units.
//  Currency      – ISO currency code.
//  Status        – payment/refund status reported by Stripe.
//  BookingRef    – booking reference from the metadata, if any.
//  CustomerEmail – payer email, if any.
//  ReceivedAt    – when the webhook was received.
//  ReviewedAt    – when an operator reviewed it (nil if pending).
//  ReviewedBy    – operator id that reviewed it.
type WebhookEvent struct {
    ID            int64           `json:"id"`
    StripeEventID string          `json:"stripe_event_id"`
    Type          string          `json:"type"`
    Amount        decimal.Decimal `json:"amount"`
    Currency      string          `json:"currency"`
    Status        string          `json:"status"`
    BookingRef    *string         `json:"booking_ref"`
    CustomerEmail *string         `json:"customer_email"`
    ReceivedAt    time.Time       `json:"received_at"`
    ReviewedAt    *time.Time      `json:"reviewed_at"`
    ReviewedBy    *uint64         `json:"reviewed_by"`
}
