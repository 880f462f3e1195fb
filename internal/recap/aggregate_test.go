package recap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

func sampleInput() Input {
	cancelled := booking(3, "A", "2024-06-01T10:00:00", "500", line("Adult", 1, 9))
	resynced := cancelled
	resynced.Status = model.BookingStatusCancelled
	resynced.CreatedAt = cancelled.CreatedAt.AddDate(0, 0, 1)

	return Input{
		Availabilities: []model.Availability{
			avail(1, "A", "2024-06-01", "10:00:00"),
			avail(2, "A", "2024-06-01", "15:00:00"),
			avail(3, "A", "2024-06-02", "10:00:00"),
		},
		Bookings: []model.Booking{
			booking(1, "A", "2024-06-01T10:00:00", "100", line("Adult", 1, 2), line("6-12 years", 2, 1)),
			booking(2, "A", "2024-06-01T15:00:00", "100", line("Adult", 1, 2)),
			cancelled,
			resynced,
		},
		Guides: []model.GuideAssignment{
			{ID: 1, AvailabilityID: 1, GuideID: 4, GuideName: "Anna"},
			{ID: 2, AvailabilityID: 2, GuideID: 4, GuideName: "Anna"},
		},
		Escorts: []model.EscortAssignment{
			{ID: 1, AvailabilityID: 1, EscortID: 8, EscortName: "Enzo"},
			{ID: 2, AvailabilityID: 2, EscortID: 8, EscortName: "Enzo"},
		},
		ActivityCosts:        []model.ActivityCost{{ActivityID: "A", Amount: money("40")}},
		Rates:                []model.ResourceRate{{Kind: model.ResourceEscort, ResourceID: 8, Amount: money("100")}},
		HistoricalCategories: []string{"13-17 years"},
	}
}

func TestAggregate(t *testing.T) {
	rec := Aggregate(sampleInput(), nil)

	assert.Equal(t, []string{"Adult", "13-17 years", "6-12 years"}, rec.Categories)
	require.Len(t, rec.Days, 2)

	day := rec.Days[0]
	assert.Equal(t, "2024-06-01", day.Date)
	assert.Equal(t, 2, day.BookingCount)
	assert.Equal(t, 5, day.TotalParticipants)
	assert.Equal(t, 1, day.GuideCount)
	assert.Equal(t, 1, day.EscortCount)
	assertMoney(t, "200", day.TotalAmount)
	assertMoney(t, "80", day.GuideCost)
	assertMoney(t, "100", day.EscortCost)
	assertMoney(t, "20", day.NetProfit)
	assert.Equal(t, 0, day.Slots[0].Participants["13-17 years"])

	empty := rec.Days[1]
	assert.Equal(t, 0, empty.BookingCount)
	assert.Equal(t, map[string]int{"Adult": 0, "13-17 years": 0, "6-12 years": 0}, empty.Slots[0].Participants)

	assert.Equal(t, 2, rec.Totals.BookingCount)
	assertMoney(t, "20", rec.Totals.NetProfit)
	assert.Equal(t, 1, rec.Totals.GuideCount)
}

func TestAggregateIsIdempotent(t *testing.T) {
	in := sampleInput()

	first, err := json.Marshal(Aggregate(in, Policies{"A": {ExcludedCategories: []string{"6-12 years"}}}))
	require.NoError(t, err)
	second, err := json.Marshal(Aggregate(in, Policies{"A": {ExcludedCategories: []string{"6-12 years"}}}))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, sampleInput(), in)
}

func TestAggregateMergedAvailabilitiesKeepCosts(t *testing.T) {
	in := Input{
		Availabilities: []model.Availability{
			avail(1, "A", "2024-06-01", "14:30:00"),
			avail(2, "A", "2024-06-01", "14:30:45"),
		},
		Bookings: []model.Booking{booking(1, "A", "2024-06-01T14:30:00", "100", line("Adult", 1, 2))},
		Guides:   []model.GuideAssignment{{ID: 1, AvailabilityID: 2, GuideID: 4, GuideName: "Anna"}},
		Escorts: []model.EscortAssignment{
			{ID: 1, AvailabilityID: 1, EscortID: 8, EscortName: "Enzo", CostOverride: moneyPtr("20")},
			{ID: 2, AvailabilityID: 2, EscortID: 8, EscortName: "Enzo", CostOverride: moneyPtr("20")},
		},
		Vouchers:      []model.Voucher{{ID: 1, AvailabilityID: 2, Tickets: []model.Ticket{{Type: "Adult", Price: money("10")}}}},
		ActivityCosts: []model.ActivityCost{{ActivityID: "A", Amount: money("40")}},
	}

	rec := Aggregate(in, nil)

	require.Len(t, rec.Days, 1)
	require.Len(t, rec.Days[0].Slots, 1)
	slot := rec.Days[0].Slots[0]
	assert.Equal(t, int64(1), slot.AvailabilityID)
	assert.Equal(t, []Person{{ID: 4, Name: "Anna"}}, slot.Guides)
	assert.Len(t, slot.Escorts, 1)
	assertMoney(t, "40", slot.GuideCost)
	assertMoney(t, "20", slot.EscortCost)
	assertMoney(t, "10", slot.VoucherCost)
	assertMoney(t, "30", slot.NetProfit)
}
