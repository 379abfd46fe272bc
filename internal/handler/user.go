package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/citycat-users/internal/logging"
    "github.com/iliyamo/citycat-users/internal/middleware"
    "github.com/iliyamo/citycat-users/internal/service"
)

// requestTimeout bounds every store round trip made on behalf of a request.
const requestTimeout = 5 * time.Second

// CacheInvalidator drops cached listings after a mutation.
type CacheInvalidator interface {
    Invalidate(ctx context.Context)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context) {}

// UserHandler serves the user directory endpoints.
type UserHandler struct {
    Users *service.UserService
    Auth  *service.AuthService
    Cache CacheInvalidator
    Log   logging.Logger
}

func NewUserHandler(users *service.UserService, auth *service.AuthService, cache CacheInvalidator, log logging.Logger) *UserHandler {
    if cache == nil {
        cache = nopInvalidator{}
    }
    if log == nil {
        log = logging.Nop()
    }
    return &UserHandler{Users: users, Auth: auth, Cache: cache, Log: log.With("component", "user_handler")}
}

// List returns every user, soft-deleted ones included.
func (h *UserHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    users, err := h.Users.List(ctx)
    if err != nil {
        return respondError(c, h.Log, "list users", err)
    }
    out := make([]userResp, 0, len(users))
    for _, u := range users {
        out = append(out, toUserResp(u))
    }
    return c.JSON(http.StatusOK, out)
}

// Register creates a user with the default role.
func (h *UserHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return invalidBody(c)
    }
    if err := req.Validate(); err != nil {
        return respondInvalid(c, err)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    u, err := h.Users.Register(ctx, service.UserRegistration{
        Email:    req.Email,
        NickName: req.NickName,
        Password: req.Password,
    })
    if err != nil {
        return respondError(c, h.Log, "register user", err)
    }
    h.Cache.Invalidate(ctx)
    return c.JSON(http.StatusCreated, toUserResp(u))
}

// Update applies a partial profile change. Only the owner may modify a user.
func (h *UserHandler) Update(c echo.Context) error {
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    caller, ok := middleware.UserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req modifyReq
    if err := c.Bind(&req); err != nil {
        return invalidBody(c)
    }
    if err := req.Validate(); err != nil {
        return respondInvalid(c, err)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    u, err := h.Users.Update(ctx, id, service.UserModification{
        NickName: req.NickName,
        Password: req.Password,
    }, caller)
    if err != nil {
        return respondError(c, h.Log, "update user", err)
    }
    h.Cache.Invalidate(ctx)
    return c.JSON(http.StatusOK, toUserResp(u))
}

// Delete soft-deletes the caller's own account.
func (h *UserHandler) Delete(c echo.Context) error {
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    caller, ok := middleware.UserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    // existence before ownership: an unknown id is 404 for every caller
    if _, err := h.Users.Find(ctx, id); err != nil {
        return respondError(c, h.Log, "delete user", err)
    }
    if err := h.Auth.Authorize(id, caller); err != nil {
        return respondError(c, h.Log, "delete user", err)
    }
    if _, err := h.Users.Delete(ctx, id); err != nil {
        return respondError(c, h.Log, "delete user", err)
    }
    h.Cache.Invalidate(ctx)
    return c.NoContent(http.StatusNoContent)
}

// pathID parses the :id path parameter. Zero is never a valid id.
func pathID(c echo.Context) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    return id, err == nil && id != 0
}
