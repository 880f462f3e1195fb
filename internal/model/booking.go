package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Booking is one activity reservation line as stored in the
// `activity_bookings` table, joined with its parent row from `bookings`.
// The same logical booking can appear several times when the channel
// manager re-syncs it; the row with the latest CreatedAt is authoritative.
//
// Fields:
//  ActivityBookingID – activity_bookings.activity_booking_id (logical id).
//  BookingID         – parent booking id.
//  ActivityID        – activity being booked.
//  ProductTitle      – activity title as sold.
//  StartDateTime     – local start, "2006-01-02T15:04:05".
//  Status            – status of the activity line (CONFIRMED, CANCELLED…).
//  TotalPrice        – gross amount charged for the line.
//  NetPrice          – amount net of channel commission.
//  CreatedAt         – row creation timestamp.
//  ParentStatus      – bookings.status (empty when the parent is missing).
//  ParentCreatedAt   – bookings.creation_date (nil when missing).
//  Participants      – pricing category lines of the booking.
type Booking struct {
    ActivityBookingID int64
    BookingID         int64
    ActivityID        string
    ProductTitle      string
    StartDateTime     string
    Status            string
    TotalPrice        decimal.Decimal
    NetPrice          decimal.Decimal
    CreatedAt         time.Time
    ParentStatus      string
    ParentCreatedAt   *time.Time
    Participants      []PricingCategoryBooking
}

// PricingCategoryBooking is one participant line of a booking
// (pricing_category_bookings). Quantity is the number of people booked
// under the category.
type PricingCategoryBooking struct {
    ID                 int64  // pricing_category_bookings.id
    ActivityBookingID  int64  // pricing_category_bookings.activity_booking_id
    PricingCategoryID  int64  // pricing_category_bookings.pricing_category_id
    BookedTitle        string // pricing_category_bookings.booked_title ("Adult", "6-12 years")
    Quantity           int    // pricing_category_bookings.quantity
    Age                *int   // pricing_category_bookings.age (nullable)
    PassengerFirstName string // pricing_category_bookings.passenger_first_name
    PassengerLastName  string // pricing_category_bookings.passenger_last_name
}

// Booking statuses that matter to the recap.
const (
    BookingStatusConfirmed = "CONFIRMED"
    BookingStatusCancelled = "CANCELLED"
)
