package middleware

import "github.com/labstack/echo/v4"

// FrameOptions sets X-Frame-Options on every response so the pages can be
// embedded in the Facebook app canvas.
func FrameOptions() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            c.Response().Header().Set(echo.HeaderXFrameOptions, "ALLOW-FROM https://apps.facebook.com")
            return next(c)
        }
    }
}
