package recap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

// MaxRangeDays bounds the period a single recap may cover.
const MaxRangeDays = 93

// ErrInvalidQuery is wrapped by Query.Validate failures.
var ErrInvalidQuery = errors.New("invalid recap query")

// Query selects the period and activities of a recap. Dates are
// "2006-01-02" and both bounds are inclusive.
type Query struct {
	From        string
	To          string
	ActivityIDs []string
}

// Validate checks the date format, ordering and range length.
func (q Query) Validate() error {
	from, err := time.Parse(time.DateOnly, q.From)
	if err != nil {
		return fmt.Errorf("%w: from %q is not YYYY-MM-DD", ErrInvalidQuery, q.From)
	}
	to, err := time.Parse(time.DateOnly, q.To)
	if err != nil {
		return fmt.Errorf("%w: to %q is not YYYY-MM-DD", ErrInvalidQuery, q.To)
	}
	if to.Before(from) {
		return fmt.Errorf("%w: to is before from", ErrInvalidQuery)
	}
	if to.Sub(from) > MaxRangeDays*24*time.Hour {
		return fmt.Errorf("%w: range exceeds %d days", ErrInvalidQuery, MaxRangeDays)
	}
	for _, id := range q.ActivityIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: empty activity id", ErrInvalidQuery)
		}
	}
	return nil
}

// Source is the data store as seen by the recap. Every method filters by
// the query's period and activities.
type Source interface {
	Bookings(ctx context.Context, q Query) ([]model.Booking, error)
	Availabilities(ctx context.Context, q Query) ([]model.Availability, error)
	GuideAssignments(ctx context.Context, q Query) ([]model.GuideAssignment, error)
	EscortAssignments(ctx context.Context, q Query) ([]model.EscortAssignment, error)
	HeadphoneAssignments(ctx context.Context, q Query) ([]model.ResourceAssignment, error)
	PrintingAssignments(ctx context.Context, q Query) ([]model.ResourceAssignment, error)
	ServiceGroups(ctx context.Context, q Query) ([]model.ServiceGroup, error)
	SpecialDateCosts(ctx context.Context, q Query) ([]model.SpecialDateCost, error)
	SeasonalCosts(ctx context.Context, q Query) ([]model.SeasonalCost, error)
	ActivityCosts(ctx context.Context, q Query) ([]model.ActivityCost, error)
	GuideActivityCosts(ctx context.Context, q Query) ([]model.GuideActivityCost, error)
	ResourceRates(ctx context.Context) ([]model.ResourceRate, error)
	Vouchers(ctx context.Context, q Query) ([]model.Voucher, error)
	HistoricalCategories(ctx context.Context, activityIDs []string) ([]string, error)
}

// Service fetches a snapshot from the Source and aggregates it.
type Service struct {
	src      Source
	policies Policies
}

// NewService returns a Service reading from src and counting participants
// according to policies.
func NewService(src Source, policies Policies) *Service {
	if policies == nil {
		policies = Policies{}
	}
	return &Service{src: src, policies: policies}
}

// fetch runs one Source call on the group and stores its result in dst.
func fetch[T any](g *errgroup.Group, dst *T, what string, fn func() (T, error)) {
	g.Go(func() error {
		v, err := fn()
		if err != nil {
			return fmt.Errorf("fetch %s: %w", what, err)
		}
		*dst = v
		return nil
	})
}

// Build fetches every table concurrently and aggregates once all of them
// have succeeded. The first failure cancels the remaining fetches and is
// returned; no partial recap is produced.
func (s *Service) Build(ctx context.Context, q Query) (Recap, error) {
	if err := q.Validate(); err != nil {
		return Recap{}, err
	}

	var in Input
	g, gctx := errgroup.WithContext(ctx)
	fetch(g, &in.Bookings, "bookings", func() ([]model.Booking, error) { return s.src.Bookings(gctx, q) })
	fetch(g, &in.Availabilities, "availabilities", func() ([]model.Availability, error) { return s.src.Availabilities(gctx, q) })
	fetch(g, &in.Guides, "guide assignments", func() ([]model.GuideAssignment, error) { return s.src.GuideAssignments(gctx, q) })
	fetch(g, &in.Escorts, "escort assignments", func() ([]model.EscortAssignment, error) { return s.src.EscortAssignments(gctx, q) })
	fetch(g, &in.Headphones, "headphone assignments", func() ([]model.ResourceAssignment, error) { return s.src.HeadphoneAssignments(gctx, q) })
	fetch(g, &in.Printing, "printing assignments", func() ([]model.ResourceAssignment, error) { return s.src.PrintingAssignments(gctx, q) })
	fetch(g, &in.ServiceGroups, "service groups", func() ([]model.ServiceGroup, error) { return s.src.ServiceGroups(gctx, q) })
	fetch(g, &in.SpecialDateCosts, "special date costs", func() ([]model.SpecialDateCost, error) { return s.src.SpecialDateCosts(gctx, q) })
	fetch(g, &in.SeasonalCosts, "seasonal costs", func() ([]model.SeasonalCost, error) { return s.src.SeasonalCosts(gctx, q) })
	fetch(g, &in.ActivityCosts, "activity costs", func() ([]model.ActivityCost, error) { return s.src.ActivityCosts(gctx, q) })
	fetch(g, &in.GuideActivityCosts, "guide activity costs", func() ([]model.GuideActivityCost, error) { return s.src.GuideActivityCosts(gctx, q) })
	fetch(g, &in.Rates, "resource rates", func() ([]model.ResourceRate, error) { return s.src.ResourceRates(gctx) })
	fetch(g, &in.Vouchers, "vouchers", func() ([]model.Voucher, error) { return s.src.Vouchers(gctx, q) })
	fetch(g, &in.HistoricalCategories, "historical categories", func() ([]string, error) {
		return s.src.HistoricalCategories(gctx, q.ActivityIDs)
	})
	if err := g.Wait(); err != nil {
		return Recap{}, err
	}

	rec := Aggregate(in, s.policies)
	rec.From, rec.To = q.From, q.To
	return rec, nil
}
