package recap

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func moneyPtr(s string) *decimal.Decimal {
	d := money(s)
	return &d
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, money(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func avail(id int64, activity, date, tm string) model.Availability {
	return model.Availability{
		ID:               id,
		ActivityID:       activity,
		ActivityTitle:    "Activity " + activity,
		LocalDate:        date,
		LocalTime:        tm,
		VacancyAvailable: 20,
		Status:           model.AvailabilityAvailable,
	}
}

func booking(id int64, activity, start, price string, lines ...model.PricingCategoryBooking) model.Booking {
	return model.Booking{
		ActivityBookingID: id,
		BookingID:         id * 10,
		ActivityID:        activity,
		ProductTitle:      "Product " + activity,
		StartDateTime:     start,
		Status:            model.BookingStatusConfirmed,
		TotalPrice:        money(price),
		CreatedAt:         ts("2024-05-01T10:00:00Z"),
		Participants:      lines,
	}
}

func line(title string, categoryID int64, qty int) model.PricingCategoryBooking {
	return model.PricingCategoryBooking{BookedTitle: title, PricingCategoryID: categoryID, Quantity: qty}
}

func i64(v int64) *int64 { return &v }
