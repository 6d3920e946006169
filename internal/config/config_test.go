package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
    t.Helper()
    for k, v := range map[string]string{
        "APP_ENV":                "dev",
        "APP_PORT":               "8080",
        "DB_USER":                "travel",
        "DB_HOST":                "127.0.0.1",
        "DB_PORT":                "3306",
        "DB_NAME":                "travel",
        "JWT_SECRET":             "secret",
        "ACCESS_TOKEN_TTL_MIN":   "15",
        "REFRESH_TOKEN_TTL_DAYS": "7",
        "BCRYPT_COST":            "4",
    } {
        t.Setenv(k, v)
    }
}

func TestLoad_Defaults(t *testing.T) {
    setRequired(t)

    c := Load()
    assert.True(t, c.IsDev())
    assert.Equal(t, 15, c.AccessTTLMin)
    assert.Equal(t, 3, c.TxMaxAttempts)
    assert.False(t, c.DBMigrate)
    assert.True(t, c.EventsEnabled)
    assert.False(t, c.EventsConsumerEnabled)
    assert.Equal(t, "logs", c.EventsLogDir)
    assert.Equal(t, "Administrator", c.AdminFullName)
    assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
}

func TestLoad_Overrides(t *testing.T) {
    setRequired(t)
    t.Setenv("DB_MIGRATE", "yes")
    t.Setenv("TX_MAX_ATTEMPTS", "5")
    t.Setenv("EVENTS_ENABLED", "off")
    t.Setenv("ADMIN_EMAIL", "  Admin@Example.com ")

    c := Load()
    assert.True(t, c.DBMigrate)
    assert.Equal(t, 5, c.TxMaxAttempts)
    assert.False(t, c.EventsEnabled)
    assert.Equal(t, "admin@example.com", c.AdminEmail)
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
    t.Setenv("X_INT", "twelve")
    t.Setenv("X_DUR", "soon")
    t.Setenv("X_BOOL", "maybe")

    assert.Equal(t, 7, envInt("X_INT", 7))
    assert.Equal(t, time.Minute, envDur("X_DUR", time.Minute))
    assert.True(t, envBool("X_BOOL", true))
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    c := LoadRateLimitConfig()
    assert.Equal(t, 1, c.Capacity)
    assert.Equal(t, 5*time.Minute, c.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")

    c := LoadCacheConfig()
    assert.True(t, c.Methods["GET"])
    assert.True(t, c.Methods["HEAD"])
    assert.False(t, c.Methods["POST"])
    assert.Equal(t, 15*time.Second, c.TTL)
}

func TestLoadRedisConfig_HostPortWins(t *testing.T) {
    t.Setenv("REDIS_ADDR", "cache:6379")
    t.Setenv("REDIS_HOST", "redis")
    t.Setenv("REDIS_PORT", "6380")

    assert.Equal(t, "redis:6380", LoadRedisConfig().Addr)
}
