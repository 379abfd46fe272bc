package middleware

// identity.go holds helpers shared across middleware files for reading the
// authenticated user out of the Echo context.

import "github.com/labstack/echo/v4"

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
    uid, ok := c.Get(ContextUserID).(uint64)
    return uid, ok && uid != 0
}
