package model

import "github.com/shopspring/decimal"

// GuideAssignment links a guide to a slot. CostOverride, when set, replaces
// the cost rule lookup for this assignment. ServiceGroupID is set when the
// guide works as part of a service group billed once.
type GuideAssignment struct {
    ID             int64
    AvailabilityID int64
    GuideID        int64
    GuideName      string
    CostOverride   *decimal.Decimal
    ServiceGroupID *int64
}

// EscortAssignment links an escort to a slot.
type EscortAssignment struct {
    ID             int64
    AvailabilityID int64
    EscortID       int64
    EscortName     string
    CostOverride   *decimal.Decimal
}

// ResourceAssignment links a headphone or printing supplier to a slot.
type ResourceAssignment struct {
    ID             int64
    AvailabilityID int64
    ResourceID     int64
    CostOverride   *decimal.Decimal
}

// ServiceGroup groups guide assignments that are billed as one unit. The
// primary assignment carries the cost; a zero PrimaryAssignmentID means
// no primary was designated.
type ServiceGroup struct {
    ID                  int64
    PrimaryAssignmentID int64
}
