package handler

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tour-ops-dashboard/internal/repository"
)

// WebhookHandler lists Stripe payment and refund events for review.
type WebhookHandler struct {
    Store WebhookStore
}

func NewWebhookHandler(store WebhookStore) *WebhookHandler {
    return &WebhookHandler{Store: store}
}

// List handles GET /v1/webhooks/stripe?from&to&type&reviewed&limit.
func (h *WebhookHandler) List(c echo.Context) error {
    f := repository.WebhookFilter{
        From: strings.TrimSpace(c.QueryParam("from")),
        To:   strings.TrimSpace(c.QueryParam("to")),
        Type: strings.TrimSpace(c.QueryParam("type")),
    }
    for _, d := range []string{f.From, f.To} {
        if d == "" {
            continue
        }
        if _, err := time.Parse(time.DateOnly, d); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be YYYY-MM-DD"})
        }
    }
    if v := c.QueryParam("reviewed"); v != "" {
        b, err := strconv.ParseBool(v)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "reviewed must be true or false"})
        }
        f.Reviewed = &b
    }
    if v := c.QueryParam("limit"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n <= 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
        }
        f.Limit = n
    }

    items, err := h.Store.List(c.Request().Context(), f)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Review handles POST /v1/webhooks/stripe/:id/review.
func (h *WebhookHandler) Review(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil || id <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    if err := h.Store.MarkReviewed(c.Request().Context(), id, uid); err != nil {
        return writeError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
