package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "https://api.globalping.io/v1", cfg.Measurement.BaseURL)
	assert.Equal(t, 60, cfg.Measurement.PollAttempts)
	assert.Equal(t, 2*time.Second, cfg.Measurement.PollInterval)
	assert.Equal(t, "sqlite", cfg.KV.Backend)
	assert.Empty(t, cfg.Archive.Path)
}

func TestLoad_YamlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
measurement:
  pollAttempts: 5
  pollInterval: 500ms
kv:
  backend: nats
  natsUrl: nats://localhost:4222
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Measurement.PollAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Measurement.PollInterval)
	assert.Equal(t, "nats", cfg.KV.Backend)
	assert.Equal(t, "nats://localhost:4222", cfg.KV.NatsURL)

	// Unset fields keep their defaults.
	assert.Equal(t, "https://api.globalping.io/v1", cfg.Measurement.BaseURL)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NoError(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LG_ADDR", ":7070")
	t.Setenv("LG_POLL_ATTEMPTS", "3")
	t.Setenv("LG_POLL_INTERVAL", "100ms")
	t.Setenv("LG_KV_BACKEND", "nats")
	t.Setenv("LG_ALLOW_ORIGINS", "https://lg.example.com, https://lg2.example.com")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Measurement.PollAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Measurement.PollInterval)
	assert.Equal(t, "nats", cfg.KV.Backend)
	assert.Equal(t, []string{"https://lg.example.com", "https://lg2.example.com"}, cfg.Server.AllowOrigins)
}
