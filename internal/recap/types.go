// Package recap turns booking, availability and cost rows into the daily
// profit recap shown on the operations dashboard. Everything in this
// package except Service is a pure function of its input.
package recap

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

// Input is one fetched snapshot of every collaborator table the recap
// reads. Aggregate never mutates it.
type Input struct {
	Bookings             []model.Booking
	Availabilities       []model.Availability
	Guides               []model.GuideAssignment
	Escorts              []model.EscortAssignment
	Headphones           []model.ResourceAssignment
	Printing             []model.ResourceAssignment
	ServiceGroups        []model.ServiceGroup
	SpecialDateCosts     []model.SpecialDateCost
	SeasonalCosts        []model.SeasonalCost
	ActivityCosts        []model.ActivityCost
	GuideActivityCosts   []model.GuideActivityCost
	Rates                []model.ResourceRate
	Vouchers             []model.Voucher
	HistoricalCategories []string
}

// Person is a guide or escort as displayed on a slot.
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Reservation marks the first or last booking received for a slot.
type Reservation struct {
	At   string `json:"at"`
	Name string `json:"name"`
}

// SlotSummary is the derived per-slot row of the recap.
type SlotSummary struct {
	Key                string          `json:"key"`
	AvailabilityID     int64           `json:"availabilityId,omitempty"`
	ActivityID         string          `json:"activityId"`
	ActivityTitle      string          `json:"activityTitle"`
	Date               string          `json:"date"`
	Time               string          `json:"time"`
	Status             string          `json:"status"`
	VacancyAvailable   int             `json:"vacancyAvailable"`
	VacancySold        int             `json:"vacancySold"`
	BookingCount       int             `json:"bookingCount"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Participants       map[string]int  `json:"participants"`
	TotalParticipants  int             `json:"totalParticipants"`
	ActualParticipants int             `json:"actualParticipants"`
	Guides             []Person        `json:"guides"`
	Escorts            []Person        `json:"escorts"`
	GuideCost          decimal.Decimal `json:"guideCost"`
	EscortCost         decimal.Decimal `json:"escortCost"`
	HeadphoneCost      decimal.Decimal `json:"headphoneCost"`
	PrintingCost       decimal.Decimal `json:"printingCost"`
	VoucherCost        decimal.Decimal `json:"voucherCost"`
	TotalCost          decimal.Decimal `json:"totalCost"`
	NetProfit          decimal.Decimal `json:"netProfit"`
	VoucherTickets     int             `json:"voucherTickets"`
	VoucherMismatch    bool            `json:"voucherMismatch"`
	FirstReservation   *Reservation    `json:"firstReservation,omitempty"`
	LastReservation    *Reservation    `json:"lastReservation,omitempty"`

	// availabilityIDs lists every availability folded into the slot,
	// AvailabilityID first.
	availabilityIDs []int64
	firstAt, lastAt time.Time
}

// Totals holds the additive figures shared by a day and the whole period.
type Totals struct {
	BookingCount      int             `json:"bookingCount"`
	TotalParticipants int             `json:"totalParticipants"`
	Participants      map[string]int  `json:"participants"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	GuideCost         decimal.Decimal `json:"guideCost"`
	EscortCost        decimal.Decimal `json:"escortCost"`
	HeadphoneCost     decimal.Decimal `json:"headphoneCost"`
	PrintingCost      decimal.Decimal `json:"printingCost"`
	VoucherCost       decimal.Decimal `json:"voucherCost"`
	TotalCost         decimal.Decimal `json:"totalCost"`
	NetProfit         decimal.Decimal `json:"netProfit"`
	GuideCount        int             `json:"guideCount"`
	EscortCount       int             `json:"escortCount"`
}

// DateGroup is every slot of one calendar date.
type DateGroup struct {
	Date string `json:"date"`
	Totals
	Guides  []Person      `json:"guides"`
	Escorts []Person      `json:"escorts"`
	Slots   []SlotSummary `json:"slots"`
}

// Recap is the aggregated result for one query.
type Recap struct {
	From       string      `json:"from,omitempty"`
	To         string      `json:"to,omitempty"`
	Categories []string    `json:"categories"`
	Days       []DateGroup `json:"days"`
	Totals     Totals      `json:"totals"`
}
