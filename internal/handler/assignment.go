package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/tour-ops-dashboard/internal/model"
    "github.com/iliyamo/tour-ops-dashboard/internal/queue"
)

// AssignmentHandler lets operators reassign the guides and escorts of a
// slot from the recap table.
type AssignmentHandler struct {
    Store    AssignmentStore
    Notifier ChangeNotifier
}

func NewAssignmentHandler(store AssignmentStore, notifier ChangeNotifier) *AssignmentHandler {
    return &AssignmentHandler{Store: store, Notifier: notifier}
}

type guideItem struct {
    GuideID        int64            `json:"guide_id"`
    CostOverride   *decimal.Decimal `json:"cost_override,omitempty"`
    ServiceGroupID *int64           `json:"service_group_id,omitempty"`
}

type escortItem struct {
    EscortID     int64            `json:"escort_id"`
    CostOverride *decimal.Decimal `json:"cost_override,omitempty"`
}

// slotID parses :id, the availability id of the slot.
func slotID(c echo.Context) (int64, bool) {
    id, err := strconv.ParseInt(c.Param("id"), 10, 64)
    return id, err == nil && id > 0
}

// validOverride accepts a missing override or a non-negative amount.
func validOverride(d *decimal.Decimal) bool {
    return d == nil || !d.IsNegative()
}

// ReplaceGuides handles PUT /v1/slots/:id/guides. The body lists the full
// new set; an empty list unassigns every guide.
func (h *AssignmentHandler) ReplaceGuides(c echo.Context) error {
    id, ok := slotID(c) // availability id from the URL
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
    }
    var body struct {
        Guides []guideItem `json:"guides"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    seen := map[int64]bool{} // a guide may appear once per slot
    rows := make([]model.GuideAssignment, 0, len(body.Guides))
    for _, g := range body.Guides {
        if g.GuideID <= 0 || seen[g.GuideID] {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or duplicate guide_id"})
        }
        if !validOverride(g.CostOverride) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "cost_override must not be negative"})
        }
        seen[g.GuideID] = true
        rows = append(rows, model.GuideAssignment{
            AvailabilityID: id,
            GuideID:        g.GuideID,
            CostOverride:   g.CostOverride,
            ServiceGroupID: g.ServiceGroupID,
        })
    }

    ctx := c.Request().Context()
    slot, err := h.Store.Slot(ctx, id) // 404 before touching assignments
    if err != nil {
        return writeError(c, err)
    }
    if err := h.Store.ReplaceGuides(ctx, id, rows); err != nil {
        return writeError(c, err) // no retry; the previous assignment stays
    }
    notify(c, h.Notifier, queue.RecapChanged{
        Reason:         queue.ReasonGuides,
        AvailabilityID: id,
        ActivityID:     slot.ActivityID,
        Date:           slot.LocalDate,
    })
    return c.JSON(http.StatusOK, echo.Map{"availability_id": id, "guides": body.Guides})
}

// ReplaceEscorts handles PUT /v1/slots/:id/escorts.
func (h *AssignmentHandler) ReplaceEscorts(c echo.Context) error {
    id, ok := slotID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
    }
    var body struct {
        Escorts []escortItem `json:"escorts"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    seen := map[int64]bool{}
    rows := make([]model.EscortAssignment, 0, len(body.Escorts))
    for _, e := range body.Escorts {
        if e.EscortID <= 0 || seen[e.EscortID] {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or duplicate escort_id"})
        }
        if !validOverride(e.CostOverride) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "cost_override must not be negative"})
        }
        seen[e.EscortID] = true
        rows = append(rows, model.EscortAssignment{AvailabilityID: id, EscortID: e.EscortID, CostOverride: e.CostOverride})
    }

    ctx := c.Request().Context()
    slot, err := h.Store.Slot(ctx, id)
    if err != nil {
        return writeError(c, err)
    }
    if err := h.Store.ReplaceEscorts(ctx, id, rows); err != nil {
        return writeError(c, err)
    }
    notify(c, h.Notifier, queue.RecapChanged{
        Reason:         queue.ReasonEscorts,
        AvailabilityID: id,
        ActivityID:     slot.ActivityID,
        Date:           slot.LocalDate,
    })
    return c.JSON(http.StatusOK, echo.Map{"availability_id": id, "escorts": body.Escorts})
}
