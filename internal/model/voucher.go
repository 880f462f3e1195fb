package model

import "github.com/shopspring/decimal"

// Voucher groups the entrance tickets bought for one slot.
type Voucher struct {
    ID             int64
    AvailabilityID int64
    Code           string
    Tickets        []Ticket
}

// Ticket is one ticket of a voucher. Type is free text from the ticket
// supplier ("Adult", "Guide", "Reduced 6-17").
type Ticket struct {
    ID        int64
    VoucherID int64
    Type      string
    Price     decimal.Decimal
}
