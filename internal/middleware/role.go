package middleware // middleware provides shared request processing for handlers

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/citycat-users/internal/model"
)

// RoleLookup lists the roles held by a user.
type RoleLookup interface {
    Roles(ctx context.Context, userID uint64) ([]model.Role, error)
}

// RequireRole returns a middleware that loads the authenticated user's
// roles and aborts with 403 unless one of them is in roles. It must run
// after JWTAuth. Roles are read per request and never cached.
func RequireRole(lookup RoleLookup, roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            uid, ok := UserID(c)
            if !ok {
                return unauthorized(c)
            }
            held, err := lookup.Roles(c.Request().Context(), uid)
            if err != nil {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "role lookup failed"})
            }
            for _, r := range held {
                if allowed[r.Name] {
                    return next(c)
                }
            }
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
    }
}
