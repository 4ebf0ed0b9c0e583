package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) error {
	t.Helper()
	return os.WriteFile(name, []byte(content), 0o644)
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config file present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, "capture.json", cfg.Store.Path)
	assert.Equal(t, 250, cfg.Capture.SettleDelayMS)
	assert.Equal(t, 2000, cfg.Capture.PingTimeoutMS)
	assert.Equal(t, 300, cfg.Capture.InjectSettleMS)
	assert.Equal(t, 10000, cfg.Capture.DispatchTimeoutMS)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CAPTURE_STORE_DRIVER", "sqlite")
	t.Setenv("CAPTURE_STORE_PATH", "team.db")
	t.Setenv("CAPTURE_CAPTURE_DISPATCH_TIMEOUT_MS", "5000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "team.db", cfg.Store.Path)
	assert.Equal(t, 5000, cfg.Capture.DispatchTimeoutMS)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	const file = `
store:
  driver: postgres
  database_url: postgres://localhost/capture
  pool:
    max_conns: 8
capture:
  settle_delay_ms: 100
log:
  level: debug
  format: console
`
	require.NoError(t, writeFile(t, "config.yaml", file))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/capture", cfg.Store.DatabaseURL)
	require.NotNil(t, cfg.Store.Pool)
	assert.Equal(t, int32(8), cfg.Store.Pool.MaxConns)
	assert.Equal(t, 100, cfg.Capture.SettleDelayMS)
	assert.Equal(t, 2000, cfg.Capture.PingTimeoutMS, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)
}
