package middleware

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/citycat-users/internal/config"
    "github.com/iliyamo/citycat-users/internal/logging"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return mr, rdb
}

func cacheConfig() config.CacheConfig {
    return config.CacheConfig{
        Enabled:      true,
        Methods:      map[string]bool{http.MethodGet: true},
        TTL:          time.Minute,
        KeyStrategy:  "route_query",
        Prefix:       "users-cache",
        MaxBodyBytes: 1024,
    }
}

// cachedServer serves GET / through rc, answering with status and body and
// counting how often the handler actually ran.
func cachedServer(rc *ResponseCache, status int, body string, calls *int) *echo.Echo {
    e := echo.New()
    e.Use(FrameOptions())
    e.GET("/", func(c echo.Context) error {
        *calls++
        return c.JSONBlob(status, []byte(body))
    }, rc.Middleware())
    return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
    return rec
}

func TestResponseCache_MissThenHit(t *testing.T) {
    mr, rdb := newRedis(t)
    rc := NewResponseCache(cacheConfig(), rdb, logging.Nop())
    require.True(t, rc.Enabled())

    calls := 0
    e := cachedServer(rc, http.StatusOK, `[{"id":1}]`, &calls)

    first := get(e, "/")
    assert.Equal(t, http.StatusOK, first.Code)
    assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

    keys := mr.Keys()
    require.Len(t, keys, 1)
    assert.True(t, strings.HasPrefix(keys[0], "users-cache:"))
    assert.Equal(t, time.Minute, mr.TTL(keys[0]))

    second := get(e, "/")
    assert.Equal(t, http.StatusOK, second.Code)
    assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
    assert.JSONEq(t, `[{"id":1}]`, second.Body.String())
    assert.Equal(t, echo.MIMEApplicationJSON, second.Header().Get(echo.HeaderContentType))
    assert.Equal(t, []string{"ALLOW-FROM https://apps.facebook.com"}, second.Header().Values(echo.HeaderXFrameOptions))
    assert.Equal(t, 1, calls)

    other := get(e, "/?page=2")
    assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
    assert.Equal(t, 2, calls)
}

func TestResponseCache_SkipsStore(t *testing.T) {
    cases := []struct {
        name    string
        status  int
        body    string
        maxBody int
    }{
        {"non-200 response", http.StatusInternalServerError, `{"error":"internal error"}`, 1024},
        {"body over limit", http.StatusOK, `[{"id":1},{"id":2}]`, 8},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            mr, rdb := newRedis(t)
            cfg := cacheConfig()
            cfg.MaxBodyBytes = tc.maxBody
            rc := NewResponseCache(cfg, rdb, logging.Nop())

            calls := 0
            e := cachedServer(rc, tc.status, tc.body, &calls)

            for i := 0; i < 2; i++ {
                rec := get(e, "/")
                assert.Equal(t, tc.status, rec.Code)
                assert.JSONEq(t, tc.body, rec.Body.String(), "client always gets the full body")
            }
            assert.Empty(t, mr.Keys())
            assert.Equal(t, 2, calls)
        })
    }
}

func TestResponseCache_Invalidate(t *testing.T) {
    mr, rdb := newRedis(t)
    rc := NewResponseCache(cacheConfig(), rdb, logging.Nop())

    calls := 0
    e := cachedServer(rc, http.StatusOK, `[]`, &calls)
    get(e, "/")
    get(e, "/?page=2")
    require.NoError(t, mr.Set("sessions:1", "keep"))
    require.Len(t, mr.Keys(), 3)

    rc.Invalidate(context.Background())

    assert.Equal(t, []string{"sessions:1"}, mr.Keys())
    assert.Equal(t, "MISS", get(e, "/").Header().Get("X-Cache"))
    assert.Equal(t, 3, calls)
}

func TestResponseCache_RedisDown(t *testing.T) {
    mr, rdb := newRedis(t)
    rc := NewResponseCache(cacheConfig(), rdb, logging.Nop())
    mr.Close()

    calls := 0
    e := cachedServer(rc, http.StatusOK, `[]`, &calls)
    for i := 0; i < 2; i++ {
        rec := get(e, "/")
        assert.Equal(t, http.StatusOK, rec.Code)
        assert.JSONEq(t, `[]`, rec.Body.String())
    }
    assert.Equal(t, 2, calls)

    rc.Invalidate(context.Background())
}
