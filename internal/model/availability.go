package model

// Availability is the data store's record of one bookable time instance
// of an activity (a slot). LocalTime may carry seconds; consumers match
// on HH:MM.
//
// Fields:
//  ID               – activity_availability.id
//  ActivityID       – activity offered by the slot.
//  ActivityTitle    – activities.title (joined).
//  LocalDate        – "2006-01-02" in the activity timezone.
//  LocalTime        – "15:04" or "15:04:05".
//  VacancyAvailable – remaining seats.
//  VacancySold      – seats sold according to the channel manager.
//  Status           – AVAILABLE, LIMITED, SOLD_OUT or CLOSED.
type Availability struct {
    ID               int64
    ActivityID       string
    ActivityTitle    string
    LocalDate        string
    LocalTime        string
    VacancyAvailable int
    VacancySold      int
    Status           string
}

// Availability statuses.
const (
    AvailabilityAvailable = "AVAILABLE"
    AvailabilityLimited   = "LIMITED"
    AvailabilitySoldOut   = "SOLD_OUT"
    AvailabilityClosed    = "CLOSED"
)
