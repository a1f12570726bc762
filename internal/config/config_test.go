package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Cache.Driver)
	assert.Equal(t, "cost_estimates.json", cfg.Cache.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrentTargets)
	assert.InDelta(t, 2.0, cfg.Batch.RequestsPerSecond, 0.001)
	assert.Equal(t, 5, cfg.Gather.ResultLimit)
	assert.Equal(t, 3, cfg.Gather.EscalationThreshold)
	assert.Equal(t, "https://api.exa.ai", cfg.Exa.BaseURL)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, 4096, cfg.Anthropic.MaxTokens)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
cache:
  driver: sqlite
  path: /tmp/estimates.db
log:
  level: debug
  format: console
server:
  port: 9090
batch:
  max_concurrent_targets: 10
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Cache.Driver)
	assert.Equal(t, "/tmp/estimates.db", cfg.Cache.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Batch.MaxConcurrentTargets)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Gather.ResultLimit)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chtemp(t)

	yaml := `
cache:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	t.Setenv("COSTORACLE_CACHE_DRIVER", "postgres")
	t.Setenv("COSTORACLE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Cache.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("COSTORACLE_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

// validConfig returns a Config that passes Validate.
func validConfig() *Config {
	return &Config{
		Exa:       ExaConfig{Key: "exa-key"},
		Anthropic: AnthropicConfig{Key: "sk-ant-key"},
		Cache:     CacheConfig{Driver: "file", Path: "estimates.json"},
		Server:    ServerConfig{Port: 8080},
	}
}

func TestValidate_AllPresent(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MissingKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Exa.Key = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exa.key is required")

	cfg = validConfig()
	cfg.Anthropic.Key = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
}

func TestValidate_CacheDrivers(t *testing.T) {
	cfg := validConfig()
	cfg.Cache = CacheConfig{Driver: "sqlite"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.path is required")

	cfg.Cache = CacheConfig{Driver: "postgres"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.database_url is required")

	cfg.Cache = CacheConfig{Driver: "postgres", DatabaseURL: "postgres://localhost/costs"}
	assert.NoError(t, cfg.Validate())

	cfg.Cache = CacheConfig{Driver: "redis"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cache driver")
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
