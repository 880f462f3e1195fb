package middleware

// identity.go holds helpers shared across middleware files for reading the
// authenticated operator out of the Echo context.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// currentUserID returns the operator id stored by JWTAuth as a string, or
// "anon" when the request is unauthenticated.  JSON numbers decode as
// float64, so the claim is normalised here.
func currentUserID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        return strconv.FormatUint(uint64(v), 10)
    case uint64:
        return strconv.FormatUint(v, 10)
    case int64:
        return strconv.FormatInt(v, 10)
    case int:
        return strconv.Itoa(v)
    }
    return "anon"
}
