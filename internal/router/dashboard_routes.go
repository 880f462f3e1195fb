package router

import (
	"github.com/labstack/echo/v4"
)

// registerDashboard registers the endpoints every operator uses day to
// day: the recap and its export, slot staffing, the read side of the
// mapping editor and the webhook review list.
func registerDashboard(g *echo.Group, h Handlers, mw Middlewares) {
	if h.Recap != nil {
		// Only the JSON recap is cached; the export is generated on demand.
		g.GET("/recap", h.Recap.Get, with(mw.RecapCache)...)
		g.GET("/recap/export", h.Recap.Export)
	}

	// ---- Slot staffing ----
	if h.Assignments != nil {
		g.PUT("/slots/:id/guides", h.Assignments.ReplaceGuides)
		g.PUT("/slots/:id/escorts", h.Assignments.ReplaceEscorts)
	}

	// ---- Mappings (read) ----
	if h.Mappings != nil {
		g.GET("/mappings", h.Mappings.List)
		g.GET("/ticket-categories", h.Mappings.TicketCategories)
	}

	// ---- Stripe webhook review ----
	if h.Webhooks != nil {
		g.GET("/webhooks/stripe", h.Webhooks.List)
		g.POST("/webhooks/stripe/:id/review", h.Webhooks.Review)
	}
}
