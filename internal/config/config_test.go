package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		"APP_ENV":                "dev",
		"APP_PORT":               "8080",
		"DB_USER":                "root",
		"DB_HOST":                "127.0.0.1",
		"DB_PORT":                "3306",
		"DB_NAME":                "roomescape",
		"JWT_SECRET":             "s3cret",
		"ACCESS_TOKEN_TTL_MIN":   "15",
		"REFRESH_TOKEN_TTL_DAYS": "7",
		"BCRYPT_COST":            "10",
		"PAYMENT_SECRET":         "test_sk",
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(lookupOf(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, "https://api.tosspayments.com", cfg.Payment.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Payment.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.Payment.ReadTimeout)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "reservation.events", cfg.Events.Queue)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Cache.Methods["GET"])
	assert.Equal(t, "rl", cfg.Rate.Prefix)
	assert.GreaterOrEqual(t, cfg.Rate.TTL, 5*cfg.Rate.RefillInterval)
	assert.False(t, cfg.IsProd())
}

func TestLoadFrom_Overrides(t *testing.T) {
	m := baseEnv()
	m["APP_ENV"] = "prod"
	m["PAYMENT_READ_TIMEOUT"] = "5s"
	m["PAYMENT_CONNECT_TIMEOUT"] = "garbage"
	m["EVENTS_ENABLED"] = "off"
	m["REDIS_HOST"] = "cache"
	m["REDIS_PORT"] = "6380"
	m["CACHE_METHODS"] = "get, head"

	cfg, err := LoadFrom(lookupOf(m))
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, 5*time.Second, cfg.Payment.ReadTimeout)
	assert.Equal(t, 3*time.Second, cfg.Payment.ConnectTimeout)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Cache.Methods)
}

func TestLoadFrom_ReportsEveryProblem(t *testing.T) {
	m := baseEnv()
	delete(m, "JWT_SECRET")
	delete(m, "PAYMENT_SECRET")
	m["BCRYPT_COST"] = "ten"
	m["ADMIN_EMAIL"] = "admin@example.com"

	_, err := LoadFrom(lookupOf(m))

	require.Error(t, err)
	for _, want := range []string{"missing JWT_SECRET", "missing PAYMENT_SECRET", `invalid int for BCRYPT_COST: "ten"`, "ADMIN_PASSWORD"} {
		assert.Contains(t, err.Error(), want)
	}
}
