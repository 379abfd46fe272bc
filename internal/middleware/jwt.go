package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
)

// ContextUserID is the echo.Context key holding the authenticated user id
// (uint64).
const ContextUserID = "user_id"

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
    ParseToken(token string) (uint64, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the resolved user id in the request context under ContextUserID.
// Any failure (missing header, wrong scheme, bad token) yields the same 401
// body so callers learn nothing about why decoding failed.
func JWTAuth(parser TokenParser) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
            if !ok {
                return unauthorized(c)
            }
            uid, err := parser.ParseToken(raw)
            if err != nil {
                return unauthorized(c)
            }
            c.Set(ContextUserID, uid)
            return next(c)
        }
    }
}

// bearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
    const prefix = "bearer "
    if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
        return "", false
    }
    raw := strings.TrimSpace(header[len(prefix):])
    return raw, raw != ""
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
