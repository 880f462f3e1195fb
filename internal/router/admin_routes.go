package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-ops-dashboard/internal/middleware" // role middleware
	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

// registerAdmin registers ADMIN-scoped endpoints on the protected /v1
// group: mapping edits and everything that reaches the invoicing partner.
func registerAdmin(g *echo.Group, h Handlers, mw Middlewares) {
	admin := middleware.RequireRole(model.RoleAdmin)

	// ---- Mappings (write) ----
	if h.Mappings != nil {
		g.POST("/mappings", h.Mappings.Create, admin)
		g.PUT("/mappings/:product", h.Mappings.Replace, admin)
		g.DELETE("/mappings/:product", h.Mappings.Delete, admin)
	}

	// ---- Invoicing ----
	// The rate limit runs after the role check so anonymous or operator
	// traffic never consumes admin tokens.
	if h.Invoicing != nil {
		limited := with(admin, mw.InvoicingLimit)
		g.POST("/invoicing/batch", h.Invoicing.Batch, limited...)
		g.POST("/invoicing/manual", h.Invoicing.Manual, limited...)
		g.POST("/invoicing/retry-failed", h.Invoicing.RetryFailed, limited...)
		g.POST("/invoicing/finalize-month", h.Invoicing.FinalizeMonth, limited...)
	}
}
