package model

import "time"

// TicketCategory is a category printed on supplier tickets. Only
// categories of class "entrance" may carry a B2C/B2B source tag.
type TicketCategory struct {
    ID    int64  `json:"id"`    // ticket_categories.id
    Name  string `json:"name"`  // ticket_categories.name
    Class string `json:"class"` // ticket_categories.class ("entrance", "guide", "other")
}

// TicketClassEntrance is the only category class that accepts a source tag.
const TicketClassEntrance = "entrance"

// Mapping sources.
const (
    SourceB2C = "B2C"
    SourceB2B = "B2B"
)

// ProductMapping associates a product name as it appears on a paper/PDF
// ticket with one activity and one ticket category.
type ProductMapping struct {
    ID               int64     // product_activity_mappings.id
    ProductName      string    // product_activity_mappings.product_name
    ActivityID       string    // product_activity_mappings.activity_id
    TicketCategoryID int64     // product_activity_mappings.ticket_category_id
    Source           *string   // product_activity_mappings.source (nullable)
    CreatedAt        time.Time // product_activity_mappings.created_at
}
