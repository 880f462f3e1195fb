package handler

import (
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tour-ops-dashboard/internal/recap"
)

// xlsxContentType is the MIME type of an Office Open XML workbook.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RecapHandler serves the daily profit recap.
type RecapHandler struct {
    Recaps RecapBuilder
    Now    func() time.Time // defaults to time.Now; tests pin it
}

func NewRecapHandler(recaps RecapBuilder) *RecapHandler {
    return &RecapHandler{Recaps: recaps, Now: time.Now}
}

// parseRecapQuery reads ?from, ?to and ?activity_id. activity_id may be
// repeated or comma-separated. A missing from means today and a missing to
// means the same day as from.
func (h *RecapHandler) parseRecapQuery(c echo.Context) recap.Query {
    q := recap.Query{
        From: strings.TrimSpace(c.QueryParam("from")),
        To:   strings.TrimSpace(c.QueryParam("to")),
    }
    if q.From == "" {
        now := time.Now
        if h.Now != nil {
            now = h.Now
        }
        q.From = now().UTC().Format(time.DateOnly)
    }
    if q.To == "" {
        q.To = q.From
    }
    for _, raw := range c.QueryParams()["activity_id"] {
        for _, id := range strings.Split(raw, ",") {
            if id = strings.TrimSpace(id); id != "" {
                q.ActivityIDs = append(q.ActivityIDs, id)
            }
        }
    }
    return q
}

// Get handles GET /v1/recap.
func (h *RecapHandler) Get(c echo.Context) error {
    rec, err := h.Recaps.Build(c.Request().Context(), h.parseRecapQuery(c))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, rec)
}

// Export handles GET /v1/recap/export and streams the recap as an xlsx
// workbook.
func (h *RecapHandler) Export(c echo.Context) error {
    q := h.parseRecapQuery(c)
    rec, err := h.Recaps.Build(c.Request().Context(), q)
    if err != nil {
        return writeError(c, err)
    }
    f, err := BuildWorkbook(rec)
    if err != nil {
        return writeError(c, err)
    }
    defer func() { _ = f.Close() }()

    buf, err := f.WriteToBuffer()
    if err != nil {
        return writeError(c, err)
    }
    c.Response().Header().Set(echo.HeaderContentDisposition,
        fmt.Sprintf(`attachment; filename="recap_%s_%s.xlsx"`, q.From, q.To))
    return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
