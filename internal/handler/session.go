package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/citycat-users/internal/logging"
    "github.com/iliyamo/citycat-users/internal/middleware"
    "github.com/iliyamo/citycat-users/internal/service"
)

// SessionHandler issues access tokens and answers identity queries.
type SessionHandler struct {
    Auth *service.AuthService
    Log  logging.Logger
}

func NewSessionHandler(auth *service.AuthService, log logging.Logger) *SessionHandler {
    if log == nil {
        log = logging.Nop()
    }
    return &SessionHandler{Auth: auth, Log: log.With("component", "session_handler")}
}

// Login verifies credentials and returns a bearer token.
func (h *SessionHandler) Login(c echo.Context) error {
    var req sessionReq
    if err := c.Bind(&req); err != nil {
        return invalidBody(c)
    }
    if err := req.Validate(); err != nil {
        return respondInvalid(c, err)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    token, err := h.Auth.Login(ctx, req.Email, req.Password)
    if err != nil {
        return respondError(c, h.Log, "login", err)
    }
    return c.JSON(http.StatusCreated, sessionResp{AccessToken: token})
}

// MyRoles lists the role names held by the authenticated caller.
func (h *SessionHandler) MyRoles(c echo.Context) error {
    uid, ok := middleware.UserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    roles, err := h.Auth.Roles(ctx, uid)
    if err != nil {
        return respondError(c, h.Log, "list roles", err)
    }
    names := make([]string, 0, len(roles))
    for _, r := range roles {
        names = append(names, r.Name)
    }
    return c.JSON(http.StatusOK, rolesResp{UserID: uid, Roles: names})
}
