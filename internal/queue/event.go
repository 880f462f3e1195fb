// Package queue defines the recap change feed carried over RabbitMQ and
// the consumer that turns it into cache invalidations.
package queue

// RecapChangedQueue is the durable queue every write publishes to.
const RecapChangedQueue = "recap.changed"

// Reasons carried by RecapChanged.
const (
    ReasonGuides   = "guides"
    ReasonEscorts  = "escorts"
    ReasonMappings = "mappings"
)

// RecapChanged is published after a write that can change a recap.  It
// carries enough context for a consumer to log what happened; consumers
// do not need it to decide what to invalidate.
type RecapChanged struct {
    ID             string `json:"id"`
    Reason         string `json:"reason"`
    AvailabilityID int64  `json:"availability_id,omitempty"`
    ActivityID     string `json:"activity_id,omitempty"`
    Date           string `json:"date,omitempty"`
    Product        string `json:"product,omitempty"`
    ChangedBy      uint64 `json:"changed_by,omitempty"`
    ChangedAt      string `json:"changed_at"`
}
