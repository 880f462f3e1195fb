package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// CacheConfig defines settings for the recap response cache.  When Enabled
// is false or no Redis client is configured, caching is disabled.  Every
// key starts with Prefix so the change feed can drop the whole cache by
// scanning Prefix + ":*".
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    ListParams   []string // query parameters holding activity id lists
    Prefix       string
    MaxBodyBytes int
    // RequiredParams must all be present for a request to be cached. The
    // recap defaults a missing from to today, so such a request would
    // otherwise keep serving the previous day after midnight.
    RequiredParams []string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
        TTL:          parseDur(getenv("CACHE_TTL", "5m")),
        ListParams:   splitList(getenv("CACHE_LIST_PARAMS", "activity_id")),
        Prefix:       getenv("CACHE_PREFIX", "recap"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "4194304")),

        RequiredParams: splitList(getenv("CACHE_REQUIRED_PARAMS", "from")),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}

func splitList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
