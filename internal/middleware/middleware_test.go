package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/tour-ops-dashboard/internal/config"
    "github.com/iliyamo/tour-ops-dashboard/internal/utils"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
    e := echo.New()
    req := httptest.NewRequest(method, target, nil)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestJWTAuth(t *testing.T) {
    tok, err := utils.NewAccessToken("secret", 7, "ADMIN", 5)
    require.NoError(t, err)

    c, rec := newContext(http.MethodGet, "/v1/me")
    c.Request().Header.Set("Authorization", "Bearer "+tok.Token)
    require.NoError(t, JWTAuth("secret")(ok)(c))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "ADMIN", c.Get("role"))
    assert.Equal(t, "7", currentUserID(c))

    c, rec = newContext(http.MethodGet, "/v1/me")
    c.Request().Header.Set("Authorization", "Bearer "+tok.Token)
    require.NoError(t, JWTAuth("other")(ok)(c))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    c, rec = newContext(http.MethodGet, "/v1/me")
    require.NoError(t, JWTAuth("secret")(ok)(c))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsOtherAlgorithms(t *testing.T) {
    claims := jwt.MapClaims{"sub": 1, "role": "ADMIN", "exp": time.Now().Add(time.Minute).Unix()}
    raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
    require.NoError(t, err)

    c, rec := newContext(http.MethodGet, "/v1/me")
    c.Request().Header.Set("Authorization", "Bearer "+raw)
    require.NoError(t, JWTAuth("secret")(ok)(c))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
    c, rec := newContext(http.MethodPost, "/v1/mappings")
    c.Set("role", "OPERATOR")
    require.NoError(t, RequireRole("ADMIN")(ok)(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)

    c, rec = newContext(http.MethodPost, "/v1/mappings")
    c.Set("role", "ADMIN")
    require.NoError(t, RequireRole("ADMIN")(ok)(c))
    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCacheKeyIgnoresQueryOrder(t *testing.T) {
    cfg := config.CacheConfig{Prefix: "recap", ListParams: []string{"activity_id"}}
    key := func(target string) string {
        c, _ := newContext(http.MethodGet, target)
        return cacheKeyFrom(cfg, c)
    }

    base := key("/v1/recap?from=2024-06-01&to=2024-06-30")
    assert.Equal(t, base, key("/v1/recap?to=2024-06-30&from=2024-06-01"))
    assert.NotEqual(t, base, key("/v1/recap?from=2024-06-02&to=2024-06-30"))
    assert.Contains(t, base, "recap:")
}

func TestCacheKeyCanonicalActivityList(t *testing.T) {
    cfg := config.CacheConfig{Prefix: "recap", ListParams: []string{"activity_id"}}
    key := func(target string) string {
        c, _ := newContext(http.MethodGet, target)
        return cacheKeyFrom(cfg, c)
    }

    want := key("/v1/recap?from=2024-06-01&activity_id=1,2")
    assert.Equal(t, want, key("/v1/recap?from=2024-06-01&activity_id=2&activity_id=1"))
    assert.Equal(t, want, key("/v1/recap?from=2024-06-01&activity_id=2,%201,1"))
    assert.NotEqual(t, want, key("/v1/recap?from=2024-06-01&activity_id=1"))
}

func TestPayloadRoundTrip(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
    require.NoError(t, err)

    status, got, body, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "application/json", got.Get("Content-Type"))
    assert.Equal(t, `{"a":1}`, string(body))

    _, _, _, ok = decodePayload([]byte{0, 1})
    assert.False(t, ok)
}

func TestCaptureWriterLimit(t *testing.T) {
    rec := httptest.NewRecorder()
    cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
    _, _ = cw.Write([]byte("abc"))
    _, _ = cw.Write([]byte("def"))

    assert.Equal(t, "abcd", cw.buf.String())
    assert.True(t, cw.truncated())
    assert.Equal(t, "abcdef", rec.Body.String())
}

func TestMiddlewaresPassThroughWithoutRedis(t *testing.T) {
    c, rec := newContext(http.MethodGet, "/v1/recap")
    require.NoError(t, NewRedisCache(config.CacheConfig{Enabled: true}, nil)(ok)(c))
    assert.Equal(t, http.StatusOK, rec.Code)

    c, rec = newContext(http.MethodPost, "/v1/invoicing/batch")
    require.NoError(t, NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)(ok)(c))
    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildRateKey(t *testing.T) {
    c, _ := newContext(http.MethodPost, "/v1/invoicing/batch")
    c.Set("user_id", float64(3))

    assert.Equal(t, "rl:invoicing:account", buildRateKey(config.RateLimitConfig{Prefix: "rl:invoicing"}, c))
    assert.Equal(t, "rl:invoicing:user:3",
        buildRateKey(config.RateLimitConfig{Prefix: "rl:invoicing", KeyStrategy: "user"}, c))
}

func TestOperationUsesRoutePath(t *testing.T) {
    c, _ := newContext(http.MethodPost, "/v1/invoicing/finalize-month?dry=1")
    assert.Equal(t, "finalize-month", operation(c))

    c.SetPath("/v1/invoicing/batch")
    assert.Equal(t, "batch", operation(c))
}

func TestRetryAfterSeconds(t *testing.T) {
    assert.Equal(t, 1, retryAfterSeconds(0))
    assert.Equal(t, 1, retryAfterSeconds(-20))
    assert.Equal(t, 2, retryAfterSeconds(1001))
    assert.Equal(t, 6, retryAfterSeconds(6000))
}
