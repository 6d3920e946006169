package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserID returns the authenticated caller's id.  ok is false on routes
// that do not run JWTAuth.
func UserID(c echo.Context) (id uint64, ok bool) {
    id, ok = c.Get(ctxUserID).(uint64)
    return id, ok && id > 0
}

// Role returns the authenticated caller's role, or "" when anonymous.
func Role(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}

// identityKey is the caller component of rate-limit and cache keys.
func identityKey(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
