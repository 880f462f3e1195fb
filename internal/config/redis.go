package config

// Redis backs the recap response cache and the invoicing rate limit.  If
// the server cannot be reached at startup the constructor returns nil and
// both middlewares degrade to pass-through.

import (
    "context"
    "crypto/tls"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables:
//   REDIS_ADDR (host:port) or REDIS_HOST + REDIS_PORT, which take precedence
//   REDIS_PASSWORD, REDIS_DB (default 0), REDIS_TLS ("true" or "1")
func NewRedisClient() *redis.Client {
    addr := getenv("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    dbNum, _ := strconv.Atoi(getenv("REDIS_DB", "0"))

    var tlsConf *tls.Config
    if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  os.Getenv("REDIS_PASSWORD"),
        DB:        dbNum,
        TLSConfig: tlsConf,
    })

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
