package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/tour-ops-dashboard/internal/handler"    // handlers that implement each endpoint
	"github.com/iliyamo/tour-ops-dashboard/internal/middleware" // JWT authentication and role enforcement
	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

// Handlers bundles every handler the API exposes.  A nil field leaves its
// routes unregistered.
type Handlers struct {
	Auth        *handler.AuthHandler
	Recap       *handler.RecapHandler
	Assignments *handler.AssignmentHandler
	Mappings    *handler.MappingHandler
	Webhooks    *handler.WebhookHandler
	Invoicing   *handler.InvoicingHandler
}

// Middlewares are the optional per-route middlewares built from Redis.
// Nil entries are skipped.
type Middlewares struct {
	RecapCache     echo.MiddlewareFunc // response cache for GET /v1/recap
	InvoicingLimit echo.MiddlewareFunc // token bucket in front of the partner API
}

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and the container runtime poll this endpoint.
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the whole /v1 surface.  Login lives under /v1/auth
// without a token; everything else requires a valid access token and
// either operator role, and the admin routes additionally require ADMIN.
func RegisterAPI(e *echo.Echo, h Handlers, mw Middlewares, jwtSecret string) {
	if h.Auth != nil {
		e.POST("/v1/auth/login", h.Auth.Login)
	}

	// One protected group.  Stricter roles are attached per route so that
	// unknown /v1 paths answer 404 for every operator.
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleOperator),
	)
	if h.Auth != nil {
		g.GET("/me", h.Auth.Me)
	}
	registerDashboard(g, h, mw)
	registerAdmin(g, h, mw)
}

// with drops nil middlewares so callers can pass optional ones as-is.
func with(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
