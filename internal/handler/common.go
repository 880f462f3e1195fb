package handler // handler defines the HTTP handlers of the dashboard API

import (
    "context"  // context is used by the collaborator interfaces
    "errors"   // errors matches sentinel values in writeError
    "log"      // log records unexpected failures before answering 500
    "net/http" // http provides status code constants
    "strconv"  // strconv converts strings to numeric types

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/tour-ops-dashboard/internal/invoicing"
    "github.com/iliyamo/tour-ops-dashboard/internal/model"
    "github.com/iliyamo/tour-ops-dashboard/internal/queue"
    "github.com/iliyamo/tour-ops-dashboard/internal/recap"
    "github.com/iliyamo/tour-ops-dashboard/internal/repository"
)

// UserStore is the part of repository.UserRepo used by AuthHandler.
type UserStore interface {
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RecapBuilder produces a recap for a query; recap.Service implements it.
type RecapBuilder interface {
    Build(ctx context.Context, q recap.Query) (recap.Recap, error)
}

// AssignmentStore is implemented by repository.AssignmentRepo.
type AssignmentStore interface {
    Slot(ctx context.Context, availabilityID int64) (model.Availability, error)
    ReplaceGuides(ctx context.Context, availabilityID int64, guides []model.GuideAssignment) error
    ReplaceEscorts(ctx context.Context, availabilityID int64, escorts []model.EscortAssignment) error
}

// MappingStore is implemented by repository.MappingRepo.
type MappingStore interface {
    List(ctx context.Context) ([]model.ProductMapping, error)
    ListProduct(ctx context.Context, product string) ([]model.ProductMapping, error)
    ListTicketCategories(ctx context.Context) ([]model.TicketCategory, error)
    Create(ctx context.Context, product string, links []model.ProductMapping) error
    Replace(ctx context.Context, product string, links []model.ProductMapping) error
    Delete(ctx context.Context, product string) error
}

// WebhookStore is implemented by repository.WebhookRepo.
type WebhookStore interface {
    List(ctx context.Context, f repository.WebhookFilter) ([]model.WebhookEvent, error)
    MarkReviewed(ctx context.Context, id int64, operator uint64) error
}

// Invoicer is implemented by invoicing.Client.
type Invoicer interface {
    CreateBatch(ctx context.Context, req invoicing.BatchRequest) (invoicing.BatchResult, error)
    CreateManual(ctx context.Context, req invoicing.ManualRequest) (invoicing.Invoice, error)
    RetryFailed(ctx context.Context, req invoicing.MonthRequest) (invoicing.RetryResult, error)
    FinalizeMonth(ctx context.Context, req invoicing.MonthRequest) (invoicing.FinalizeResult, error)
}

// ChangeNotifier is told about every successful write that can alter a
// recap. It must not block and cannot fail the request.
type ChangeNotifier interface {
    RecapChanged(ctx context.Context, ev queue.RecapChanged)
}

// getUserID extracts the user_id set by JWTAuth and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    switch t := c.Get("user_id").(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64: // JSON numbers in JWT claims decode as float64
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// writeError maps a failure onto the API's status codes and writes the
// {"error": "..."} body. Unknown errors are logged and answered with 500.
func writeError(c echo.Context, err error) error {
    var apiErr *invoicing.APIError
    switch {
    case errors.Is(err, recap.ErrInvalidQuery),
        errors.Is(err, repository.ErrInvalidMapping),
        errors.Is(err, repository.ErrSourceNotAllowed),
        errors.Is(err, invoicing.ErrInvalidRequest):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.As(err, &apiErr):
        return c.JSON(http.StatusBadGateway, echo.Map{"error": apiErr.Message, "partner_status": apiErr.Status})
    case errors.Is(err, context.DeadlineExceeded):
        return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "timeout"})
    }
    log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// notify forwards ev to n when one is configured.
func notify(c echo.Context, n ChangeNotifier, ev queue.RecapChanged) {
    if n == nil {
        return
    }
    if uid, err := getUserID(c); err == nil {
        ev.ChangedBy = uid
    }
    n.RecapChanged(c.Request().Context(), ev)
}
