package recap

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

// DedupeBookings keeps one row per activity booking id: the one with the
// latest CreatedAt. On equal timestamps the row seen first wins. The
// result preserves the order in which each id first appeared.
func DedupeBookings(rows []model.Booking) []model.Booking {
	index := make(map[int64]int, len(rows))
	out := make([]model.Booking, 0, len(rows))
	for _, b := range rows {
		i, seen := index[b.ActivityBookingID]
		if !seen {
			index[b.ActivityBookingID] = len(out)
			out = append(out, b)
			continue
		}
		if b.CreatedAt.After(out[i].CreatedAt) {
			out[i] = b
		}
	}
	return out
}

// dropCancelled removes bookings whose surviving row is cancelled. It runs
// after deduplication so that a re-synced cancellation wins over the
// original confirmation.
func dropCancelled(rows []model.Booking) []model.Booking {
	out := rows[:0:0]
	for _, b := range rows {
		if strings.EqualFold(b.Status, model.BookingStatusCancelled) ||
			strings.EqualFold(b.ParentStatus, model.BookingStatusCancelled) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// NormalizeTime reduces "9:05", "09:05:00" or "09:05:59.123" to "09:05".
func NormalizeTime(t string) string {
	t = strings.TrimSpace(t)
	parts := strings.SplitN(t, ":", 3)
	if len(parts) < 2 {
		return t
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil {
		return t
	}
	return twoDigits(h) + ":" + twoDigits(m)
}

func twoDigits(n int) string {
	if n < 10 && n >= 0 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// SlotKey identifies a slot across bookings and availabilities.
func SlotKey(activityID, date, t string) string {
	return activityID + "|" + date + "|" + NormalizeTime(t)
}

// splitDateTime splits "2006-01-02T15:04:05" (or with a space separator)
// into its date and time parts.
func splitDateTime(dt string) (string, string) {
	dt = strings.TrimSpace(dt)
	if i := strings.IndexAny(dt, "T "); i >= 0 {
		return dt[:i], dt[i+1:]
	}
	return dt, ""
}

// effectiveCreatedAt prefers the parent booking's creation date.
func effectiveCreatedAt(b model.Booking) time.Time {
	if b.ParentCreatedAt != nil && !b.ParentCreatedAt.IsZero() {
		return *b.ParentCreatedAt
	}
	return b.CreatedAt
}

func leadPassenger(b model.Booking) string {
	for _, p := range b.Participants {
		name := strings.TrimSpace(strings.TrimSpace(p.PassengerFirstName) + " " + strings.TrimSpace(p.PassengerLastName))
		if name != "" {
			return name
		}
	}
	return ""
}

func newSlot(key, activityID, title, date, t string) *SlotSummary {
	return &SlotSummary{
		Key:           key,
		ActivityID:    activityID,
		ActivityTitle: title,
		Date:          date,
		Time:          NormalizeTime(t),
		Participants:  map[string]int{},
		Guides:        []Person{},
		Escorts:       []Person{},
		TotalAmount:   decimal.Zero,
	}
}

// BuildSlots seeds one slot per availability and folds the (already
// deduplicated) bookings into them. Availabilities sharing a slot key merge
// into the first one seen; their ids stay attached so that costs booked
// against any of them land on the merged slot. A booking without a
// matching availability gets a synthetic SOLD_OUT slot with no
// availability id.
func BuildSlots(avails []model.Availability, bookings []model.Booking, policies Policies) map[string]*SlotSummary {
	slots := make(map[string]*SlotSummary, len(avails))
	for _, a := range avails {
		key := SlotKey(a.ActivityID, a.LocalDate, a.LocalTime)
		if s, dup := slots[key]; dup {
			s.availabilityIDs = append(s.availabilityIDs, a.ID)
			continue
		}
		s := newSlot(key, a.ActivityID, a.ActivityTitle, a.LocalDate, a.LocalTime)
		s.AvailabilityID = a.ID
		s.availabilityIDs = []int64{a.ID}
		s.Status = a.Status
		s.VacancyAvailable = a.VacancyAvailable
		s.VacancySold = a.VacancySold
		slots[key] = s
	}

	for _, b := range bookings {
		date, t := splitDateTime(b.StartDateTime)
		key := SlotKey(b.ActivityID, date, t)
		s, ok := slots[key]
		if !ok {
			s = newSlot(key, b.ActivityID, b.ProductTitle, date, t)
			s.Status = model.AvailabilitySoldOut
			slots[key] = s
		}
		foldBooking(s, b, policies.For(b.ActivityID))
	}
	return slots
}

func foldBooking(s *SlotSummary, b model.Booking, policy Policy) {
	s.BookingCount++
	s.TotalAmount = s.TotalAmount.Add(b.TotalPrice)
	for _, line := range b.Participants {
		s.ActualParticipants += line.Quantity
		if !policy.Counts(line) {
			continue
		}
		title := strings.TrimSpace(line.BookedTitle)
		s.Participants[title] += line.Quantity
		s.TotalParticipants += line.Quantity
	}

	at := effectiveCreatedAt(b)
	if s.FirstReservation == nil || at.Before(s.firstAt) {
		s.firstAt = at
		s.FirstReservation = &Reservation{At: at.UTC().Format(time.RFC3339), Name: leadPassenger(b)}
	}
	if s.LastReservation == nil || at.After(s.lastAt) {
		s.lastAt = at
		s.LastReservation = &Reservation{At: at.UTC().Format(time.RFC3339), Name: leadPassenger(b)}
	}
}
