package model

import "github.com/shopspring/decimal"

// SpecialDateCost is a guide cost that applies to one activity on one date.
type SpecialDateCost struct {
    ActivityID string
    Date       string // "2006-01-02"
    Amount     decimal.Decimal
}

// SeasonalCost is a guide cost that applies to an activity for every date
// inside [StartDate, EndDate], both inclusive.
type SeasonalCost struct {
    SeasonID   int64
    ActivityID string
    StartDate  string
    EndDate    string
    Amount     decimal.Decimal
}

// ActivityCost is the legacy per-activity guide cost.
type ActivityCost struct {
    ActivityID string
    Amount     decimal.Decimal
}

// GuideActivityCost is the legacy guide-specific per-activity cost.
type GuideActivityCost struct {
    ActivityID string
    GuideID    int64
    Amount     decimal.Decimal
}

// Resource kinds carried by resource_rates.kind.
const (
    ResourceEscort    = "ESCORT"
    ResourceHeadphone = "HEADPHONE"
    ResourcePrinting  = "PRINTING"
)

// ResourceRate is the flat rate of an escort (per day) or of a headphone
// or printing supplier (per participant).
type ResourceRate struct {
    Kind       string
    ResourceID int64
    Amount     decimal.Decimal
}
