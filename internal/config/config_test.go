package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.True(t, cache.Enabled)
	assert.Equal(t, 5*time.Minute, cache.TTL)
	assert.Equal(t, time.Minute, cache.CleanupFrequency)

	rl, err := cfg.GetRateLimit()
	require.NoError(t, err)
	assert.Equal(t, 100, rl.MaxRequests)
	assert.Equal(t, time.Hour, rl.Window)

	models, err := cfg.GetModels()
	require.NoError(t, err)
	assert.Equal(t, 1600*time.Millisecond, models.TransformersLatency)
	assert.Equal(t, 1200*time.Millisecond, models.CustomLatency)

	assert.Equal(t, LimitsConfig{
		HistoryTextChars:  10000,
		FeedbackTextChars: 5000,
		InsightWindow:     100,
		HistoryPageSize:   20,
	}, cfg.GetLimits())

	assert.Equal(t, "memory", cfg.GetStore().Type)
	assert.Equal(t, "@every 1h", cfg.GetTraining().ExportSchedule)
	assert.False(t, cfg.GetTraining().ExportEnabled)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  frontend: cli
  shutdown_timeout: 3s
store:
  type: sqlite
  sqlite_path: /tmp/test.db
cache:
  ttl: 30s
`), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	server, err := cfg.GetServer()
	require.NoError(t, err)
	assert.Equal(t, "cli", server.Frontend)
	assert.Equal(t, 3*time.Second, server.ShutdownTimeout)
	assert.Equal(t, "0.0.0.0:8080", server.ListenAddress, "unset keys keep their defaults")

	assert.Equal(t, StoreConfig{Type: "sqlite", SQLitePath: "/tmp/test.db", MySQLDSN: cfg.GetString("store.mysql_dsn")}, cfg.GetStore())

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cache.TTL)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CREDIBILITY_STORE_TYPE", "mysql")
	t.Setenv("CREDIBILITY_RATELIMIT_MAX_REQUESTS", "7")

	cfg := NewFromViper(newViper())
	assert.Equal(t, "mysql", cfg.GetStore().Type)

	rl, err := cfg.GetRateLimit()
	require.NoError(t, err)
	assert.Equal(t, 7, rl.MaxRequests)
}

func TestInvalidDuration(t *testing.T) {
	v := NewEmptyViper()
	v.Set("cache.ttl", "soon")

	_, err := NewFromViper(v).GetCache()
	assert.ErrorContains(t, err, "cache.ttl")
}

func TestRateLimitRejectsNonPositive(t *testing.T) {
	for key, value := range map[string]any{
		"ratelimit.window":       "0s",
		"ratelimit.max_requests": 0,
	} {
		v := NewEmptyViper()
		v.Set(key, value)

		_, err := NewFromViper(v).GetRateLimit()
		assert.ErrorContains(t, err, key)
	}

	v := NewEmptyViper()
	v.Set("ratelimit.window", "-1m")
	_, err := NewFromViper(v).GetRateLimit()
	assert.ErrorContains(t, err, "ratelimit.window")
}

func TestNewFromFile_Missing(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
