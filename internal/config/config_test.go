package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const secret = "11112222333344445555666677778888"

func setMemoryEnv(t *testing.T) {
    t.Setenv("STORE", "memory")
    t.Setenv("JWT_SECRET", secret)
}

func TestFromEnv_Defaults(t *testing.T) {
    setMemoryEnv(t)

    cfg, err := FromEnv()
    require.NoError(t, err)
    assert.Equal(t, StoreMemory, cfg.Store)
    assert.Equal(t, "8080", cfg.Port)
    assert.Equal(t, 0, cfg.AccessTTLMin)
    assert.Equal(t, 10, cfg.BcryptCost)
    assert.Equal(t, "info", cfg.LogLevel)
    assert.False(t, cfg.Events.Enabled)
    assert.Equal(t, "users-cache", cfg.Cache.Prefix)
    assert.True(t, cfg.Cache.Methods["GET"])
}

func TestFromEnv_MySQLRequiresDatabase(t *testing.T) {
    t.Setenv("STORE", "mysql")
    t.Setenv("JWT_SECRET", secret)
    t.Setenv("DB_USER", "")
    t.Setenv("DB_HOST", "")
    t.Setenv("DB_PORT", "")
    t.Setenv("DB_NAME", "")

    _, err := FromEnv()
    require.Error(t, err)
    for _, key := range []string{"DB_USER", "DB_HOST", "DB_PORT", "DB_NAME"} {
        assert.Contains(t, err.Error(), key)
    }

    t.Setenv("DB_USER", "root")
    t.Setenv("DB_HOST", "localhost")
    t.Setenv("DB_PORT", "3306")
    t.Setenv("DB_NAME", "citycat")
    cfg, err := FromEnv()
    require.NoError(t, err)
    assert.Equal(t, "citycat", cfg.DBName)
}

func TestFromEnv_Invalid(t *testing.T) {
    cases := []struct {
        name string
        key  string
        val  string
        want string
    }{
        {"missing secret", "JWT_SECRET", "", "JWT_SECRET"},
        {"bad ttl", "ACCESS_TOKEN_TTL_MIN", "soon", "ACCESS_TOKEN_TTL_MIN"},
        {"negative ttl", "ACCESS_TOKEN_TTL_MIN", "-5", "must not be negative"},
        {"bad cost", "BCRYPT_COST", "x", "BCRYPT_COST"},
        {"unknown store", "STORE", "mongo", "unknown STORE"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            setMemoryEnv(t)
            t.Setenv(tc.key, tc.val)

            _, err := FromEnv()
            require.Error(t, err)
            assert.Contains(t, err.Error(), tc.want)
        })
    }
}

func TestFromEnv_EventsURLFallback(t *testing.T) {
    setMemoryEnv(t)
    t.Setenv("RABBITMQ_URL", "")
    t.Setenv("AMQP_URL", "amqp://u:p@mq:5672/")
    t.Setenv("EVENTS_ENABLED", "yes")

    cfg, err := FromEnv()
    require.NoError(t, err)
    assert.True(t, cfg.Events.Enabled)
    assert.Equal(t, "amqp://u:p@mq:5672/", cfg.Events.URL)

    t.Setenv("RABBITMQ_URL", "amqp://primary/")
    cfg, err = FromEnv()
    require.NoError(t, err)
    assert.Equal(t, "amqp://primary/", cfg.Events.URL)
}

func TestLoadCacheAndRedisConfig(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    t.Setenv("CACHE_TTL", "2m")
    t.Setenv("CACHE_ENABLED", "off")
    t.Setenv("REDIS_HOST", "cache")
    t.Setenv("REDIS_PORT", "6380")
    t.Setenv("REDIS_DB", "3")

    cc := LoadCacheConfig()
    assert.False(t, cc.Enabled)
    assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cc.Methods)
    assert.Equal(t, 2*time.Minute, cc.TTL)

    rc := LoadRedisConfig()
    assert.Equal(t, "cache:6380", rc.Addr)
    assert.Equal(t, 3, rc.DB)
    assert.False(t, rc.TLS)
}
