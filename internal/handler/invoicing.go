package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// partnerTimeout bounds one call to the invoicing partner.  Month
// finalization can take a while on their side.
const partnerTimeout = 60 * time.Second

// InvoicingHandler forwards admin actions to the partner invoicing API.
// Partner failures surface as 502 with the partner's message; nothing is
// retried automatically.
type InvoicingHandler struct {
    Client Invoicer
}

func NewInvoicingHandler(client Invoicer) *InvoicingHandler {
    return &InvoicingHandler{Client: client}
}

// forward binds the request body into a req, calls the partner and writes
// its result with status.
func forward[Req, Res any](c echo.Context, status int, call func(context.Context, Req) (Res, error)) error {
    var req Req
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), partnerTimeout)
    defer cancel()

    res, err := call(ctx, req)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(status, res)
}

// Batch handles POST /v1/invoicing/batch.
func (h *InvoicingHandler) Batch(c echo.Context) error {
    return forward(c, http.StatusOK, h.Client.CreateBatch)
}

// Manual handles POST /v1/invoicing/manual.
func (h *InvoicingHandler) Manual(c echo.Context) error {
    return forward(c, http.StatusCreated, h.Client.CreateManual)
}

// RetryFailed handles POST /v1/invoicing/retry-failed.
func (h *InvoicingHandler) RetryFailed(c echo.Context) error {
    return forward(c, http.StatusOK, h.Client.RetryFailed)
}

// FinalizeMonth handles POST /v1/invoicing/finalize-month.
func (h *InvoicingHandler) FinalizeMonth(c echo.Context) error {
    return forward(c, http.StatusOK, h.Client.FinalizeMonth)
}
