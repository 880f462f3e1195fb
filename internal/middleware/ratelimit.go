package middleware

import (
    "math"
    "net/http"
    "path"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/tour-ops-dashboard/internal/config"
)

// takeTokens refills the bucket at KEYS[1] and tries to take ARGV[6]
// tokens from it in one step.  It returns {allowed, remaining, wait_ms}
// where wait_ms is how long until enough tokens are back.
var takeTokens = redis.NewScript(`
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local per_refill = tonumber(ARGV[3])
local every = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])
local cost = tonumber(ARGV[6])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local stamp = tonumber(redis.call('HGET', KEYS[1], 'stamp'))
if not tokens or not stamp then
  tokens, stamp = capacity, now
end

local steps = math.floor((now - stamp) / every)
if steps > 0 then
  tokens = math.min(capacity, tokens + steps * per_refill)
  stamp = stamp + steps * every
end

local allowed, wait = 0, 0
if tokens >= cost then
  allowed = 1
  tokens = tokens - cost
else
  local missing = math.ceil((cost - tokens) / per_refill)
  wait = missing * every - (now - stamp)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// NewTokenBucket guards the partner invoicing routes with a Redis token
// bucket.  Each route takes cfg.Cost(<last path segment>) tokens.  When
// Redis fails the request goes through; the partner's own throttling is
// the backstop.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            cost := cfg.Cost(operation(c))

            res, err := takeTokens.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(),
                cfg.Capacity,
                cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(),
                int64(cfg.TTL/time.Second),
                cost,
            ).Int64Slice()
            if err != nil || len(res) != 3 {
                if cfg.Debug {
                    c.Logger().Warnf("[ratelimit] bucket %s unavailable: %v", key, err)
                }
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
            h.Set("X-RateLimit-Cost", strconv.Itoa(cost))
            if res[0] == 1 {
                return next(c)
            }

            secs := retryAfterSeconds(res[2])
            h.Set("Retry-After", strconv.Itoa(secs))
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "invoicing rate limit exceeded",
                "retry_after": secs,
            })
        }
    }
}

// operation names the partner call behind the matched route, for example
// "finalize-month" for /v1/invoicing/finalize-month.
func operation(c echo.Context) string {
    p := c.Path()
    if p == "" {
        p = c.Request().URL.Path
    }
    return path.Base(p)
}

// retryAfterSeconds rounds a wait in milliseconds up to whole seconds, at
// least one.
func retryAfterSeconds(waitMs int64) int {
    secs := int(math.Ceil(float64(waitMs) / 1000))
    if secs < 1 {
        secs = 1
    }
    return secs
}

// buildRateKey picks the bucket: one per partner account, or one per admin
// when KeyStrategy is "user".
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    if cfg.KeyStrategy == "user" {
        return cfg.Prefix + ":user:" + currentUserID(c)
    }
    return cfg.Prefix + ":account"
}
