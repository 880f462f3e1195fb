package handler

import (
    "net/http"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/tour-ops-dashboard/internal/model"
    "github.com/iliyamo/tour-ops-dashboard/internal/repository"
)

func TestWebhookListFilters(t *testing.T) {
    store := &fakeWebhooks{items: []model.WebhookEvent{{ID: 1, StripeEventID: "evt_1", Type: "charge.refunded"}}}
    h := NewWebhookHandler(store)

    c, rec := request(http.MethodGet, "/v1/webhooks/stripe?from=2024-06-01&to=2024-06-30&type=charge.refunded&reviewed=false&limit=50", "")
    require.NoError(t, h.List(c))

    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "2024-06-01", store.filter.From)
    assert.Equal(t, "charge.refunded", store.filter.Type)
    require.NotNil(t, store.filter.Reviewed)
    assert.False(t, *store.filter.Reviewed)
    assert.Equal(t, 50, store.filter.Limit)
    assert.Contains(t, rec.Body.String(), `"stripe_event_id":"evt_1"`)
}

func TestWebhookListRejectsBadParams(t *testing.T) {
    h := NewWebhookHandler(&fakeWebhooks{})
    for _, target := range []string{
        "/v1/webhooks/stripe?from=01/06/2024",
        "/v1/webhooks/stripe?reviewed=maybe",
        "/v1/webhooks/stripe?limit=-3",
    } {
        c, rec := request(http.MethodGet, target, "")
        require.NoError(t, h.List(c))
        assert.Equal(t, http.StatusBadRequest, rec.Code, target)
    }
}

func TestWebhookReview(t *testing.T) {
    store := &fakeWebhooks{reviewed: map[int64]uint64{}}
    h := NewWebhookHandler(store)

    c, rec := request(http.MethodPost, "/v1/webhooks/stripe/5/review", "", "id", "5")
    c.Set("user_id", float64(9))
    require.NoError(t, h.Review(c))
    assert.Equal(t, http.StatusNoContent, rec.Code)
    assert.Equal(t, uint64(9), store.reviewed[5])

    store.err = repository.ErrConflict
    c, rec = request(http.MethodPost, "/v1/webhooks/stripe/5/review", "", "id", "5")
    c.Set("user_id", float64(9))
    require.NoError(t, h.Review(c))
    assert.Equal(t, http.StatusConflict, rec.Code)
}
