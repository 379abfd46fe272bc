package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/citycat-users/internal/config"
    "github.com/iliyamo/citycat-users/internal/logging"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 {
        cw.buf.Write(b)
    } else if remain := cw.limit - cw.size; remain > 0 {
        if int64(len(b)) <= remain {
            cw.buf.Write(b)
        } else {
            cw.buf.Write(b[:remain])
        }
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// Build a stable cache key honoring prefix/strategy.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    method := r.Method
    route := c.Path()
    query := r.URL.RawQuery

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = append(parts, "route", route)
    case "method_route":
        parts = append(parts, "method", method, "route", route)
    case "method_route_query":
        parts = append(parts, "method", method, "route", route, "q", query)
    default: // "route_query"
        parts = append(parts, "route", route, "q", query)
    }

    tail := strings.Join(parts[1:], ":")
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%x", parts[0], sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    var hdr http.Header
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
            return 0, nil, nil, false
        }
    } else {
        hdr = make(http.Header)
    }
    return status, hdr, bs[8+hlen:], true
}

// ResponseCache stores successful responses of read endpoints in Redis and
// drops them when the underlying user data changes. A disabled cache (or a
// nil client) passes every request through and invalidates nothing.
type ResponseCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
    log logging.Logger
}

// NewResponseCache builds a ResponseCache. rdb may be nil.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client, log logging.Logger) *ResponseCache {
    if log == nil {
        log = logging.Nop()
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 5 * time.Minute
    }
    return &ResponseCache{cfg: cfg, rdb: rdb, log: log}
}

// Enabled reports whether responses are actually cached.
func (rc *ResponseCache) Enabled() bool {
    return rc != nil && rc.cfg.Enabled && rc.rdb != nil
}

// Middleware stores headers + body so clients see identical formatting on a hit.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
    if !rc.Enabled() {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    maxBody := int64(rc.cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }

            ctx := c.Request().Context()
            key := cacheKeyFrom(rc.cfg, c)

            if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    out := c.Response().Header()
                    for k, vals := range hdr {
                        // outer middleware already set its headers on this response
                        if strings.EqualFold(k, echo.HeaderContentLength) || len(out.Values(k)) > 0 {
                            continue
                        }
                        out[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(body) > 0 {
                        _, _ = c.Response().Write(body)
                    }
                    return nil
                }
            }

            // Miss: capture
            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
                return nil
            }

            hdr := make(http.Header, len(c.Response().Header()))
            for k, vals := range c.Response().Header() {
                if k == "X-Cache" {
                    continue
                }
                hdr[k] = append([]string(nil), vals...)
            }
            payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
            if err != nil {
                return nil
            }
            if err := rc.rdb.SetEx(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err(); err != nil {
                rc.log.Warn(ctx, "cache store failed", "key", key, "error", err)
            }
            return nil
        }
    }
}

// Invalidate removes every entry under the cache prefix. Failures are logged
// and swallowed; stale listings expire with the TTL anyway.
func (rc *ResponseCache) Invalidate(ctx context.Context) {
    if !rc.Enabled() {
        return
    }
    iter := rc.rdb.Scan(ctx, 0, rc.cfg.Prefix+":*", 100).Iterator()
    var keys []string
    for iter.Next(ctx) {
        keys = append(keys, iter.Val())
    }
    if err := iter.Err(); err != nil {
        rc.log.Warn(ctx, "cache scan failed", "prefix", rc.cfg.Prefix, "error", err)
        return
    }
    if len(keys) == 0 {
        return
    }
    if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
        rc.log.Warn(ctx, "cache invalidate failed", "keys", len(keys), "error", err)
    }
}
