package middleware

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/citycat-users/internal/model"
)

type stubParser map[string]uint64

func (s stubParser) ParseToken(token string) (uint64, error) {
    if id, ok := s[token]; ok {
        return id, nil
    }
    return 0, errors.New("invalid token")
}

type stubRoles map[uint64][]model.Role

func (s stubRoles) Roles(_ context.Context, userID uint64) ([]model.Role, error) {
    if userID == 99 {
        return nil, errors.New("db down")
    }
    return s[userID], nil
}

func serve(t *testing.T, header string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    e.GET("/", func(c echo.Context) error {
        uid, ok := UserID(c)
        require.True(t, ok)
        return c.JSON(http.StatusOK, echo.Map{"userId": uid})
    }, mws...)

    req := httptest.NewRequest(http.MethodGet, "/", nil)
    if header != "" {
        req.Header.Set(echo.HeaderAuthorization, header)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuth(t *testing.T) {
    parser := stubParser{"good": 7}

    cases := []struct {
        name   string
        header string
        status int
    }{
        {"valid bearer", "Bearer good", http.StatusOK},
        {"lowercase scheme", "bearer good", http.StatusOK},
        {"missing header", "", http.StatusUnauthorized},
        {"wrong scheme", "Basic good", http.StatusUnauthorized},
        {"empty token", "Bearer   ", http.StatusUnauthorized},
        {"unknown token", "Bearer bad", http.StatusUnauthorized},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            rec := serve(t, tc.header, JWTAuth(parser))
            assert.Equal(t, tc.status, rec.Code)
            if tc.status == http.StatusUnauthorized {
                assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
            } else {
                assert.JSONEq(t, `{"userId":7}`, rec.Body.String())
            }
        })
    }
}

func TestRequireRole(t *testing.T) {
    parser := stubParser{"user": 1, "guest": 2, "broken": 99}
    roles := stubRoles{1: {model.NewRole(1, model.DefaultRoleName)}}

    cases := []struct {
        name   string
        header string
        status int
    }{
        {"holder passes", "Bearer user", http.StatusOK},
        {"no roles", "Bearer guest", http.StatusForbidden},
        {"lookup failure", "Bearer broken", http.StatusInternalServerError},
        {"unauthenticated", "", http.StatusUnauthorized},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            rec := serve(t, tc.header, JWTAuth(parser), RequireRole(roles, model.DefaultRoleName))
            assert.Equal(t, tc.status, rec.Code)
        })
    }
}

func TestFrameOptions(t *testing.T) {
    e := echo.New()
    e.Use(FrameOptions())
    e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

    for _, path := range []string{"/", "/missing"} {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
        assert.Equal(t, "ALLOW-FROM https://apps.facebook.com", rec.Header().Get(echo.HeaderXFrameOptions), path)
    }
}
