package handler

import (
    "net/http"
    "net/url"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tour-ops-dashboard/internal/model"
    "github.com/iliyamo/tour-ops-dashboard/internal/queue"
)

// MappingHandler edits product→activity mappings.
type MappingHandler struct {
    Store    MappingStore
    Notifier ChangeNotifier
}

func NewMappingHandler(store MappingStore, notifier ChangeNotifier) *MappingHandler {
    return &MappingHandler{Store: store, Notifier: notifier}
}

type linkDTO struct {
    ID               int64   `json:"id,omitempty"`
    ActivityID       string  `json:"activity_id"`
    TicketCategoryID int64   `json:"ticket_category_id"`
    Source           *string `json:"source,omitempty"`
}

// ProductGroup is every mapping of one product, as listed by the editor.
type ProductGroup struct {
    Product string    `json:"product"`
    Links   []linkDTO `json:"links"`
}

// GroupByProduct folds mappings ordered by product name into groups.
func GroupByProduct(rows []model.ProductMapping) []ProductGroup {
    out := []ProductGroup{}
    for _, m := range rows {
        if len(out) == 0 || out[len(out)-1].Product != m.ProductName {
            out = append(out, ProductGroup{Product: m.ProductName, Links: []linkDTO{}})
        }
        g := &out[len(out)-1]
        g.Links = append(g.Links, linkDTO{
            ID:               m.ID,
            ActivityID:       m.ActivityID,
            TicketCategoryID: m.TicketCategoryID,
            Source:           m.Source,
        })
    }
    return out
}

func toMappings(links []linkDTO) []model.ProductMapping {
    out := make([]model.ProductMapping, len(links))
    for i, l := range links {
        out[i] = model.ProductMapping{ActivityID: l.ActivityID, TicketCategoryID: l.TicketCategoryID, Source: l.Source}
    }
    return out
}

// productParam returns the unescaped :product path segment.
func productParam(c echo.Context) string {
    p := c.Param("product")
    if u, err := url.PathUnescape(p); err == nil {
        p = u
    }
    return strings.TrimSpace(p)
}

// List handles GET /v1/mappings.
func (h *MappingHandler) List(c echo.Context) error {
    rows, err := h.Store.List(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": GroupByProduct(rows)})
}

// TicketCategories handles GET /v1/ticket-categories.
func (h *MappingHandler) TicketCategories(c echo.Context) error {
    cats, err := h.Store.ListTicketCategories(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": cats})
}

// Create handles POST /v1/mappings.
func (h *MappingHandler) Create(c echo.Context) error {
    var body struct {
        Product string    `json:"product"`
        Links   []linkDTO `json:"links"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    product := strings.TrimSpace(body.Product)
    if err := h.Store.Create(c.Request().Context(), product, toMappings(body.Links)); err != nil {
        return writeError(c, err)
    }
    return h.respondProduct(c, http.StatusCreated, product)
}

// Replace handles PUT /v1/mappings/:product. The new set replaces the old
// one atomically.
func (h *MappingHandler) Replace(c echo.Context) error {
    var body struct {
        Links []linkDTO `json:"links"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    product := productParam(c)
    if err := h.Store.Replace(c.Request().Context(), product, toMappings(body.Links)); err != nil {
        return writeError(c, err)
    }
    return h.respondProduct(c, http.StatusOK, product)
}

// Delete handles DELETE /v1/mappings/:product.
func (h *MappingHandler) Delete(c echo.Context) error {
    product := productParam(c)
    if err := h.Store.Delete(c.Request().Context(), product); err != nil {
        return writeError(c, err)
    }
    notify(c, h.Notifier, queue.RecapChanged{Reason: queue.ReasonMappings, Product: product})
    return c.NoContent(http.StatusNoContent)
}

// respondProduct notifies the change feed and answers with the product's
// stored mappings.
func (h *MappingHandler) respondProduct(c echo.Context, status int, product string) error {
    notify(c, h.Notifier, queue.RecapChanged{Reason: queue.ReasonMappings, Product: product})
    rows, err := h.Store.ListProduct(c.Request().Context(), product)
    if err != nil {
        return writeError(c, err)
    }
    groups := GroupByProduct(rows)
    if len(groups) == 0 {
        return c.JSON(status, ProductGroup{Product: product, Links: []linkDTO{}})
    }
    return c.JSON(status, groups[0])
}
