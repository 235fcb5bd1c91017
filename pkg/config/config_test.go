package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("backend:\n  base_url: http://backend:8000\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 5*time.Minute, c.Cache.FreshTTL)
	assert.Equal(t, 5*time.Minute, c.Refresh.Interval)
	assert.Equal(t, "universe", c.Dashboard.DefaultTab)
	assert.Equal(t, ".SN", c.Dashboard.CountrySuffix)
	assert.Equal(t, 8, c.Backend.Concurrency)
}

func TestParseKeepsExplicitValues(t *testing.T) {
	c, err := Parse([]byte(`
backend:
  base_url: https://api.example.com
  concurrency: 2
cache:
  fresh_ttl: 30s
dashboard:
  default_tab: signals
`))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Backend.Concurrency)
	assert.Equal(t, 30*time.Second, c.Cache.FreshTTL)
	assert.Equal(t, "signals", c.Dashboard.DefaultTab)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing base url", "server:\n  port: 1\n"},
		{"bad scheme", "backend:\n  base_url: ftp://x\n"},
		{"unknown tab", "backend:\n  base_url: http://x\ndashboard:\n  default_tab: nope\n"},
		{"kafka without brokers", "backend:\n  base_url: http://x\nkafka:\n  enabled: true\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644))

	t.Setenv("PREDBOARD_BACKEND_URL", "http://from-env:8000")
	t.Setenv("PREDBOARD_PORT", "9100")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8000", c.Backend.BaseURL)
	assert.Equal(t, 9100, c.Server.Port)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.Equal(t, "cache", c.Cache.Redis.Host)
	assert.Equal(t, 6380, c.Cache.Redis.Port)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}
