package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/citycat-users/internal/handler"
	"github.com/iliyamo/citycat-users/internal/logging"
	"github.com/iliyamo/citycat-users/internal/middleware"
	"github.com/iliyamo/citycat-users/internal/model"
	"github.com/iliyamo/citycat-users/internal/service"
)

// Setup installs the middleware that applies to every request: panic
// recovery, request logging, CORS and the frame-options header.
func Setup(e *echo.Echo, log logging.Logger) {
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				log.Warn(c.Request().Context(), "request", append(args, "error", v.Error)...)
				return nil
			}
			log.Info(c.Request().Context(), "request", args...)
			return nil
		},
	}))
	e.Use(echomw.CORS())
	e.Use(middleware.FrameOptions())
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterUsers registers the user directory. Listing and registration are
// public; modification requires a bearer token of a user holding the default
// role, deletion only a valid bearer token. Routes live at the top level, so
// the guards are attached per route instead of through a group.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, auth *service.AuthService, cache *middleware.ResponseCache) {
	e.GET("/", h.List, cache.Middleware())
	e.POST("/register", h.Register)

	e.PATCH("/patch-userInfo/:id", h.Update, protected(auth)...)
	// no role guard: an unknown id must answer 404, not 403
	e.DELETE("/delete-user/:id", h.Delete, middleware.JWTAuth(auth))
}

// RegisterSession registers login and identity endpoints.
func RegisterSession(e *echo.Echo, h *handler.SessionHandler, auth *service.AuthService) {
	e.POST("/session", h.Login)
	e.GET("/me/roles", h.MyRoles, protected(auth)...)
}

func protected(auth *service.AuthService) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(auth),
		middleware.RequireRole(auth, model.DefaultRoleName),
	}
}
