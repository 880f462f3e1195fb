package handler

import (
    "context"
    "io"
    "net/http/httptest"
    "strings"
    "sync"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tour-ops-dashboard/internal/invoicing"
    "github.com/iliyamo/tour-ops-dashboard/internal/model"
    "github.com/iliyamo/tour-ops-dashboard/internal/queue"
    "github.com/iliyamo/tour-ops-dashboard/internal/recap"
    "github.com/iliyamo/tour-ops-dashboard/internal/repository"
)

// request builds an echo context for method/target with an optional JSON
// body and path parameters given as name, value pairs.
func request(method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
    e := echo.New()
    var r io.Reader
    if body != "" {
        r = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, target, r)
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    for i := 0; i+1 < len(params); i += 2 {
        c.SetParamNames(append(c.ParamNames(), params[i])...)
        c.SetParamValues(append(c.ParamValues(), params[i+1])...)
    }
    return c, rec
}

type fakeUsers struct {
    users map[string]model.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
    u, ok := f.users[email]
    if !ok {
        return model.User{}, repository.ErrNotFound
    }
    return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
    for _, u := range f.users {
        if u.ID == id {
            return u, nil
        }
    }
    return model.User{}, repository.ErrNotFound
}

type fakeRecaps struct {
    got recap.Query
    rec recap.Recap
    err error
}

func (f *fakeRecaps) Build(_ context.Context, q recap.Query) (recap.Recap, error) {
    f.got = q
    if f.err != nil {
        return recap.Recap{}, f.err
    }
    if err := q.Validate(); err != nil {
        return recap.Recap{}, err
    }
    return f.rec, nil
}

type fakeAssignments struct {
    slots   map[int64]model.Availability
    guides  map[int64][]model.GuideAssignment
    escorts map[int64][]model.EscortAssignment
    err     error
}

func (f *fakeAssignments) Slot(_ context.Context, id int64) (model.Availability, error) {
    s, ok := f.slots[id]
    if !ok {
        return s, repository.ErrNotFound
    }
    return s, nil
}

func (f *fakeAssignments) ReplaceGuides(_ context.Context, id int64, g []model.GuideAssignment) error {
    if f.err != nil {
        return f.err
    }
    f.guides[id] = g
    return nil
}

func (f *fakeAssignments) ReplaceEscorts(_ context.Context, id int64, e []model.EscortAssignment) error {
    if f.err != nil {
        return f.err
    }
    f.escorts[id] = e
    return nil
}

type fakeMappings struct {
    rows       []model.ProductMapping
    categories []model.TicketCategory
    err        error
}

func (f *fakeMappings) List(context.Context) ([]model.ProductMapping, error) { return f.rows, f.err }

func (f *fakeMappings) ListProduct(_ context.Context, product string) ([]model.ProductMapping, error) {
    var out []model.ProductMapping
    for _, m := range f.rows {
        if m.ProductName == product {
            out = append(out, m)
        }
    }
    return out, nil
}

func (f *fakeMappings) ListTicketCategories(context.Context) ([]model.TicketCategory, error) {
    return f.categories, f.err
}

func (f *fakeMappings) store(product string, links []model.ProductMapping) {
    kept := f.rows[:0]
    for _, m := range f.rows {
        if m.ProductName != product {
            kept = append(kept, m)
        }
    }
    f.rows = kept
    for i, l := range links {
        l.ID = int64(100 + i)
        l.ProductName = product
        f.rows = append(f.rows, l)
    }
}

func (f *fakeMappings) Create(_ context.Context, product string, links []model.ProductMapping) error {
    if f.err != nil {
        return f.err
    }
    f.store(product, links)
    return nil
}

func (f *fakeMappings) Replace(_ context.Context, product string, links []model.ProductMapping) error {
    if f.err != nil {
        return f.err
    }
    f.store(product, links)
    return nil
}

func (f *fakeMappings) Delete(_ context.Context, product string) error {
    if f.err != nil {
        return f.err
    }
    f.store(product, nil)
    return nil
}

type fakeWebhooks struct {
    filter   repository.WebhookFilter
    items    []model.WebhookEvent
    reviewed map[int64]uint64
    err      error
}

func (f *fakeWebhooks) List(_ context.Context, filter repository.WebhookFilter) ([]model.WebhookEvent, error) {
    f.filter = filter
    return f.items, f.err
}

func (f *fakeWebhooks) MarkReviewed(_ context.Context, id int64, operator uint64) error {
    if f.err != nil {
        return f.err
    }
    f.reviewed[id] = operator
    return nil
}

type fakeInvoicer struct {
    batch  invoicing.BatchRequest
    err    error
    result invoicing.FinalizeResult
}

func (f *fakeInvoicer) CreateBatch(_ context.Context, req invoicing.BatchRequest) (invoicing.BatchResult, error) {
    f.batch = req
    if f.err != nil {
        return invoicing.BatchResult{}, f.err
    }
    return invoicing.BatchResult{Created: len(req.BookingIDs)}, nil
}

func (f *fakeInvoicer) CreateManual(_ context.Context, req invoicing.ManualRequest) (invoicing.Invoice, error) {
    if f.err != nil {
        return invoicing.Invoice{}, f.err
    }
    return invoicing.Invoice{ID: "INV-1", DocumentType: req.DocumentType}, nil
}

func (f *fakeInvoicer) RetryFailed(context.Context, invoicing.MonthRequest) (invoicing.RetryResult, error) {
    return invoicing.RetryResult{}, f.err
}

func (f *fakeInvoicer) FinalizeMonth(context.Context, invoicing.MonthRequest) (invoicing.FinalizeResult, error) {
    return f.result, f.err
}

type fakeNotifier struct {
    mu     sync.Mutex
    events []queue.RecapChanged
}

func (f *fakeNotifier) RecapChanged(_ context.Context, ev queue.RecapChanged) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.events = append(f.events, ev)
}
