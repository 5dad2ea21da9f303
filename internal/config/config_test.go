package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tempo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 5*24*time.Hour, cfg.Auth.MaxAge)
	assert.Equal(t, 15*time.Minute, cfg.Auth.PruneInterval)
	assert.Equal(t, "sid", cfg.Auth.CookieName)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  env: production
server:
  addr: "127.0.0.1:9000"
  read_timeout: 3s
database:
  path: /tmp/tempo-test.db
auth:
  mode: header
  trusted_header: X-Auth-Request-User
log:
  format: json
telemetry:
  trace_exporter: stdout
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, "/tmp/tempo-test.db", cfg.Database.Path)
	assert.Equal(t, AuthModeHeader, cfg.Auth.Mode)
	assert.Equal(t, "X-Auth-Request-User", cfg.Auth.TrustedHeader)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "database:\n  path: /from/file.db\n")
	t.Setenv("TEMPO_DB", "/from/env.db")
	t.Setenv("TEMPO_RATE_LIMIT", "2.5")
	t.Setenv("TEMPO_METRICS", "false")
	t.Setenv("TEMPO_AUTH_MAX_AGE", "1h")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", cfg.Database.Path)
	assert.InDelta(t, 2.5, cfg.Server.RateLimit, 0.0001)
	assert.False(t, cfg.Telemetry.Metrics)
	assert.Equal(t, time.Hour, cfg.Auth.MaxAge)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("TEMPO_METRICS", "sometimes")
	_, err := Load("")
	assert.ErrorContains(t, err, "TEMPO_METRICS")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.ErrorContains(t, err, "parsing config file")
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Config){
		"env":            func(c *Config) { c.App.Env = "staging" },
		"addr":           func(c *Config) { c.Server.Addr = "" },
		"rate":           func(c *Config) { c.Server.RateLimit = -1 },
		"db":             func(c *Config) { c.Database.Path = "" },
		"auth mode":      func(c *Config) { c.Auth.Mode = "oauth" },
		"cookie max age": func(c *Config) { c.Auth.MaxAge = 0 },
		"prune zero":     func(c *Config) { c.Auth.PruneInterval = 0 },
		"prune negative": func(c *Config) { c.Auth.PruneInterval = -time.Minute },
		"shutdown zero":  func(c *Config) { c.Server.ShutdownTimeout = 0 },
		"shutdown neg":   func(c *Config) { c.Server.ShutdownTimeout = -time.Second },
		"header":         func(c *Config) { c.Auth.Mode = AuthModeHeader; c.Auth.TrustedHeader = "" },
		"log format":     func(c *Config) { c.Log.Format = "xml" },
		"exporter":       func(c *Config) { c.Telemetry.TraceExporter = "jaeger" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), "invalid config")
		})
	}
}

func TestLoad_RejectsNonPositiveIntervals(t *testing.T) {
	path := writeConfig(t, `
server:
  shutdown_timeout: 0s
auth:
  prune_interval: -5m
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "auth.prune_interval must be positive")
	assert.ErrorContains(t, err, "server.shutdown_timeout must be positive")
}

func TestValidate_HeaderModeIgnoresPruneInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.Mode = AuthModeHeader
	cfg.Auth.TrustedHeader = "X-Forwarded-User"
	cfg.Auth.PruneInterval = 0
	assert.NoError(t, cfg.Validate())
}
