package middleware

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/tour-ops-dashboard/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return mr, rdb
}

func serve(e *echo.Echo, method, target string, header http.Header) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, target, nil)
    for k, vals := range header {
        for _, v := range vals {
            req.Header.Add(k, v)
        }
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func cachedRecap(t *testing.T) (*echo.Echo, *int, *miniredis.Miniredis) {
    t.Helper()
    mr, rdb := newRedis(t)
    cfg := config.CacheConfig{
        Enabled:        true,
        Methods:        map[string]bool{http.MethodGet: true},
        TTL:            time.Minute,
        ListParams:     []string{"activity_id"},
        Prefix:         "recap",
        RequiredParams: []string{"from"},
    }
    calls := 0
    e := echo.New()
    e.GET("/v1/recap", func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"calls": calls})
    }, NewRedisCache(cfg, rdb))
    return e, &calls, mr
}

func TestRedisCacheHitOnSecondGet(t *testing.T) {
    e, calls, _ := cachedRecap(t)

    first := serve(e, http.MethodGet, "/v1/recap?from=2024-06-01&activity_id=2,1", nil)
    require.Equal(t, http.StatusOK, first.Code)
    assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

    second := serve(e, http.MethodGet, "/v1/recap?activity_id=1&activity_id=2&from=2024-06-01", nil)
    require.Equal(t, http.StatusOK, second.Code)
    assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
    assert.Equal(t, first.Body.String(), second.Body.String())
    assert.Equal(t, echo.MIMEApplicationJSON, second.Header().Get(echo.HeaderContentType))
    assert.Equal(t, 1, *calls)
}

func TestRedisCacheNoCacheRefreshesEntry(t *testing.T) {
    e, calls, _ := cachedRecap(t)
    target := "/v1/recap?from=2024-06-01"

    serve(e, http.MethodGet, target, nil)
    fresh := serve(e, http.MethodGet, target, http.Header{"Cache-Control": {"no-cache"}})
    assert.Equal(t, "MISS", fresh.Header().Get("X-Cache"))
    assert.Equal(t, 2, *calls)

    again := serve(e, http.MethodGet, target, nil)
    assert.Equal(t, "HIT", again.Header().Get("X-Cache"))
    assert.JSONEq(t, `{"calls":2}`, again.Body.String())
}

func TestRedisCacheSkipsRequestWithoutDate(t *testing.T) {
    e, calls, mr := cachedRecap(t)

    first := serve(e, http.MethodGet, "/v1/recap", nil)
    second := serve(e, http.MethodGet, "/v1/recap", nil)

    assert.Equal(t, "BYPASS", first.Header().Get("X-Cache"))
    assert.Equal(t, "BYPASS", second.Header().Get("X-Cache"))
    assert.Equal(t, 2, *calls)
    assert.Empty(t, mr.Keys())
}

func TestInvalidatePrefix(t *testing.T) {
    mr, rdb := newRedis(t)
    require.NoError(t, mr.Set("recap:a", "1"))
    require.NoError(t, mr.Set("recap:b", "2"))
    require.NoError(t, mr.Set("rl:invoicing:account", "3"))

    n, err := InvalidatePrefix(context.Background(), rdb, "recap")
    require.NoError(t, err)
    assert.Equal(t, 2, n)
    assert.Equal(t, []string{"rl:invoicing:account"}, mr.Keys())

    n, err = InvalidatePrefix(context.Background(), nil, "recap")
    require.NoError(t, err)
    assert.Zero(t, n)
}

func TestTokenBucketWeightedCalls(t *testing.T) {
    _, rdb := newRedis(t)
    cfg := config.RateLimitConfig{
        Enabled:        true,
        Capacity:       4,
        RefillTokens:   1,
        RefillInterval: time.Minute,
        TTL:            10 * time.Minute,
        Prefix:         "rl:invoicing",
        Weights:        map[string]int{"batch": 3, "manual": 1},
    }
    e := echo.New()
    limit := NewTokenBucket(cfg, rdb)
    for _, op := range []string{"batch", "manual"} {
        e.POST("/v1/invoicing/"+op, ok, limit)
    }

    first := serve(e, http.MethodPost, "/v1/invoicing/batch", nil)
    require.Equal(t, http.StatusOK, first.Code)
    assert.Equal(t, "4", first.Header().Get("X-RateLimit-Limit"))
    assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
    assert.Equal(t, "3", first.Header().Get("X-RateLimit-Cost"))

    blocked := serve(e, http.MethodPost, "/v1/invoicing/batch", nil)
    require.Equal(t, http.StatusTooManyRequests, blocked.Code)
    assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
    assert.Contains(t, blocked.Body.String(), "invoicing rate limit exceeded")

    // the lighter call still fits in what is left
    light := serve(e, http.MethodPost, "/v1/invoicing/manual", nil)
    require.Equal(t, http.StatusOK, light.Code)
    assert.Equal(t, "0", light.Header().Get("X-RateLimit-Remaining"))
}
