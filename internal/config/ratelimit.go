package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// RateLimitConfig configures the Redis token bucket placed in front of the
// partner invoicing endpoints.  The partner bills per call and throttles the
// whole account, so by default every admin draws from one shared bucket and
// heavier operations take more than one token.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string         // "account" (shared) or "user"
    Prefix         string
    Weights        map[string]int // tokens per call, keyed by the last path segment
    Debug          bool
}

// defaultWeights reflects how expensive each partner call is on their side.
const defaultWeights = "batch=3,finalize-month=5,retry-failed=2,manual=1"

// LoadRateLimitConfig reads INVOICING_RATE_LIMIT_* variables.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("INVOICING_RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("INVOICING_RATE_LIMIT_CAPACITY", 20),
        RefillTokens:   envInt("INVOICING_RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("INVOICING_RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
        TTL:            envDur("INVOICING_RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    strings.ToLower(getenv("INVOICING_RATE_LIMIT_KEY_STRATEGY", "account")),
        Prefix:         getenv("INVOICING_RATE_LIMIT_PREFIX", "rl:invoicing"),
        Weights:        parseWeights(getenv("INVOICING_RATE_LIMIT_WEIGHTS", defaultWeights)),
        Debug:          envBool("INVOICING_RATE_LIMIT_DEBUG", false),
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.RefillTokens < 1 {
        cfg.RefillTokens = 1
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Second
    }
    if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
        cfg.TTL = minTTL
    }
    // a call heavier than the bucket could never pass
    for op, w := range cfg.Weights {
        if w > cfg.Capacity {
            cfg.Weights[op] = cfg.Capacity
        }
    }
    return cfg
}

// Cost returns the number of tokens a call to operation takes.  Unknown
// operations cost one token.
func (c RateLimitConfig) Cost(operation string) int {
    if w, ok := c.Weights[operation]; ok && w > 0 {
        return w
    }
    return 1
}

// parseWeights reads "op=n,op=n".  Malformed pairs are skipped.
func parseWeights(s string) map[string]int {
    out := map[string]int{}
    for _, pair := range strings.Split(s, ",") {
        op, n, ok := strings.Cut(strings.TrimSpace(pair), "=")
        if !ok {
            continue
        }
        w, err := strconv.Atoi(strings.TrimSpace(n))
        if err != nil || w < 1 {
            continue
        }
        out[strings.TrimSpace(op)] = w
    }
    return out
}

func envBool(k string, d bool) bool {
    switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
        return dur
    }
    return d
}
