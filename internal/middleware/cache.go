package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "maps"
    "net/http"
    "slices"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/tour-ops-dashboard/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 {
        cw.buf.Write(b)
    } else if remain := cw.limit - cw.size; remain > 0 {
        if int64(len(b)) <= remain {
            cw.buf.Write(b)
        } else {
            cw.buf.Write(b[:remain])
        }
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// truncated reports whether the response outgrew the capture limit.
func (cw *captureWriter) truncated() bool {
    return cw.limit > 0 && cw.size > cw.limit
}

// cacheKeyFrom builds the cache key of a recap request.  Parameters in
// cfg.ListParams may be repeated or comma separated, so their values are
// split, deduplicated and sorted first: ?activity_id=2,1 and
// ?activity_id=1&activity_id=2 ask for the same recap and share a key.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    q := c.Request().URL.Query()
    for _, name := range cfg.ListParams {
        vals, ok := q[name]
        if !ok {
            continue
        }
        set := map[string]bool{}
        for _, v := range vals {
            for _, part := range strings.Split(v, ",") {
                if part = strings.TrimSpace(part); part != "" {
                    set[part] = true
                }
            }
        }
        q[name] = slices.Sorted(maps.Keys(set))
    }
    route := c.Path()
    if route == "" {
        route = c.Request().URL.Path
    }
    // Encode sorts by name
    sum := sha1.Sum([]byte(route + "?" + q.Encode()))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// cacheable reports whether every required query parameter carries a value.
func cacheable(cfg config.CacheConfig, c echo.Context) bool {
    for _, name := range cfg.RequiredParams {
        if strings.TrimSpace(c.QueryParam(name)) == "" {
            return false
        }
    }
    return true
}

// NewRedisCache caches successful responses of the wrapped routes in Redis,
// headers included, so hits are byte-identical to the original response.
// A request sent with "Cache-Control: no-cache" skips the lookup and
// refreshes the entry; the dashboard's refresh button uses it. Requests
// missing one of cfg.RequiredParams are never cached.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 5 * time.Minute
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            if !cfg.Methods[strings.ToUpper(req.Method)] {
                return next(c)
            }
            if !cacheable(cfg, c) {
                c.Response().Header().Set("X-Cache", "BYPASS")
                return next(c)
            }
            key := cacheKeyFrom(cfg, c)

            if !strings.Contains(strings.ToLower(req.Header.Get("Cache-Control")), "no-cache") {
                if bs, err := rdb.Get(req.Context(), key).Bytes(); err == nil {
                    if status, hdr, body, ok := decodePayload(bs); ok {
                        for k, vals := range hdr {
                            if strings.EqualFold(k, "Content-Length") || strings.EqualFold(k, "X-Cache") {
                                continue
                            }
                            for _, v := range vals {
                                c.Response().Header().Add(k, v)
                            }
                        }
                        c.Response().Header().Set("X-Cache", "HIT")
                        c.Response().WriteHeader(status)
                        _, _ = c.Response().Write(body)
                        return nil
                    }
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated() {
                return nil
            }
            hdr := c.Response().Header().Clone()
            if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                _ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
            }
            return nil
        }
    }
}

// InvalidatePrefix deletes every cache entry under prefix and returns the
// number of keys removed.  A nil client is a no-op.
func InvalidatePrefix(ctx context.Context, rdb *redis.Client, prefix string) (int, error) {
    if rdb == nil {
        return 0, nil
    }
    var (
        removed int
        batch   []string
    )
    flush := func() error {
        if len(batch) == 0 {
            return nil
        }
        n, err := rdb.Del(ctx, batch...).Result()
        removed += int(n)
        batch = batch[:0]
        return err
    }

    iter := rdb.Scan(ctx, 0, prefix+":*", 200).Iterator()
    for iter.Next(ctx) {
        batch = append(batch, iter.Val())
        if len(batch) >= 200 {
            if err := flush(); err != nil {
                return removed, err
            }
        }
    }
    if err := iter.Err(); err != nil {
        return removed, err
    }
    return removed, flush()
}
