package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

// WebhookFilter narrows the webhook review list. Empty fields do not
// filter; From and To are inclusive "2006-01-02" dates on received_at.
type WebhookFilter struct {
	From     string
	To       string
	Type     string
	Reviewed *bool
	Limit    int
}

// WebhookRepo reads Stripe webhook events stored for operator review.
type WebhookRepo struct {
	db *sql.DB
}

// NewWebhookRepo constructs a WebhookRepo over db.
func NewWebhookRepo(db *sql.DB) *WebhookRepo {
	return &WebhookRepo{db: db}
}

const defaultWebhookLimit = 200

// List returns the matching events, newest first.
func (r *WebhookRepo) List(ctx context.Context, f WebhookFilter) ([]model.WebhookEvent, error) {
	query := `SELECT id, stripe_event_id, event_type, amount, currency, status, booking_ref, customer_email,
	                 received_at, reviewed_at, reviewed_by
	          FROM stripe_webhook_events WHERE 1=1`
	var args []any
	if f.From != "" {
		query += ` AND received_at >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND received_at < ?`
		args = append(args, dayAfter(f.To))
	}
	if f.Type != "" {
		query += ` AND event_type = ?`
		args = append(args, f.Type)
	}
	if f.Reviewed != nil {
		if *f.Reviewed {
			query += ` AND reviewed_at IS NOT NULL`
		} else {
			query += ` AND reviewed_at IS NULL`
		}
	}
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultWebhookLimit
	}
	query += ` ORDER BY received_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	return queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.WebhookEvent, error) {
		var (
			e          model.WebhookEvent
			amount     decimal.NullDecimal
			currency   sql.NullString
			bookingRef sql.NullString
			email      sql.NullString
			reviewedAt sql.NullTime
			reviewedBy sql.NullInt64
		)
		err := rows.Scan(&e.ID, &e.StripeEventID, &e.Type, &amount, &currency, &e.Status, &bookingRef, &email,
			&e.ReceivedAt, &reviewedAt, &reviewedBy)
		e.Amount = amount.Decimal
		e.Currency = currency.String
		if bookingRef.Valid {
			s := bookingRef.String
			e.BookingRef = &s
		}
		if email.Valid {
			s := email.String
			e.CustomerEmail = &s
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			e.ReviewedAt = &t
		}
		if reviewedBy.Valid {
			id := uint64(reviewedBy.Int64)
			e.ReviewedBy = &id
		}
		return e, err
	})
}

// MarkReviewed records that operator reviewed the event. Reviewing an
// already reviewed event yields ErrConflict.
func (r *WebhookRepo) MarkReviewed(ctx context.Context, id int64, operator uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE stripe_webhook_events SET reviewed_at = UTC_TIMESTAMP(), reviewed_by = ? WHERE id = ? AND reviewed_at IS NULL`,
		operator, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM stripe_webhook_events WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrConflict
}
