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
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 15*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, c.Server.CORSOrigins)
	assert.Equal(t, "csv", c.Prices.Backend)
	assert.Equal(t, "none", c.Cache.Backend)
	assert.Equal(t, 1000, c.Analytics.Paths)
	assert.Equal(t, 5, c.Analytics.MinOverlap)
	assert.Equal(t, 3, c.Analytics.FillLimit)
	assert.Nil(t, c.Analytics.Seed)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
environment: production
server:
  port: 9090
prices:
  backend: sqlite
  sqlite:
    path: /tmp/prices.db
cache:
  backend: memory
  ttl: 1m
analytics:
  seed: 42
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 60*time.Second, c.Server.WriteTimeout)
	assert.Equal(t, "sqlite", c.Prices.Backend)
	assert.Equal(t, "/tmp/prices.db", c.Prices.SQLite.Path)
	assert.Equal(t, "daily_closes", c.Prices.SQLite.Table)
	assert.Equal(t, time.Minute, c.Cache.TTL)
	require.NotNil(t, c.Analytics.Seed)
	assert.Equal(t, uint64(42), *c.Analytics.Seed)
}

func TestValidateRejectsBadValues(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	c.Prices.Backend = "parquet"
	assert.Error(t, c.Validate())

	c.Prices.Backend = "csv"
	c.Cache.Backend = "memcached"
	assert.Error(t, c.Validate())

	c.Cache.Backend = "none"
	c.Kafka.Enabled = true
	assert.Error(t, c.Validate())

	c.Kafka.Enabled = false
	c.Analytics.MinOverlap = 0
	assert.Error(t, c.Validate())
}

func TestApplyEnv(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	env := map[string]string{
		"OPENFOF_ENV":    "staging",
		"PRICES_BACKEND": "clickhouse",
		"REDIS_ADDR":     "cache.internal:6380",
		"KAFKA_BROKERS":  "k1:9092, k2:9092",
		"ANALYTICS_SEED": "7",
	}
	require.NoError(t, c.applyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, "clickhouse", c.Prices.Backend)
	assert.Equal(t, "cache.internal", c.Cache.Redis.Host)
	assert.Equal(t, 6380, c.Cache.Redis.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	require.NotNil(t, c.Analytics.Seed)
	assert.Equal(t, uint64(7), *c.Analytics.Seed)
	require.NoError(t, c.Validate())

	env["ANALYTICS_SEED"] = "x"
	assert.Error(t, c.applyEnv(func(k string) string { return env[k] }))
}
