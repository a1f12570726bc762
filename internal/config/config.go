package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Exa       ExaConfig       `yaml:"exa" mapstructure:"exa"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Gather    GatherConfig    `yaml:"gather" mapstructure:"gather"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ExaConfig holds Exa search API settings.
type ExaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CacheConfig configures the estimate cache backend.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// GatherConfig configures the search-gathering pass.
type GatherConfig struct {
	ResultLimit         int    `yaml:"result_limit" mapstructure:"result_limit"`
	EscalationThreshold int    `yaml:"escalation_threshold" mapstructure:"escalation_threshold"`
	DomainsFile         string `yaml:"domains_file" mapstructure:"domains_file"`
}

// BatchConfig configures batch estimation.
type BatchConfig struct {
	MaxConcurrentTargets int     `yaml:"max_concurrent_targets" mapstructure:"max_concurrent_targets"`
	RequestsPerSecond    float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COSTORACLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("cache.driver", "file")
	v.SetDefault("cache.path", "cost_estimates.json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_targets", 5)
	v.SetDefault("batch.requests_per_second", 2.0)
	v.SetDefault("gather.result_limit", 5)
	v.SetDefault("gather.escalation_threshold", 3)
	v.SetDefault("exa.base_url", "https://api.exa.ai")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is complete enough to run an
// estimation. It is called before any network or cache I/O.
func (c *Config) Validate() error {
	if c.Exa.Key == "" {
		return eris.New("config: exa.key is required (set COSTORACLE_EXA_KEY)")
	}
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic.key is required (set COSTORACLE_ANTHROPIC_KEY)")
	}
	switch c.Cache.Driver {
	case "file":
		if c.Cache.Path == "" {
			return eris.New("config: cache.path is required for the file driver")
		}
	case "sqlite":
		if c.Cache.Path == "" {
			return eris.New("config: cache.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Cache.DatabaseURL == "" {
			return eris.New("config: cache.database_url is required for the postgres driver")
		}
	default:
		return eris.Errorf("config: unknown cache driver %q", c.Cache.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: invalid server port %d", c.Server.Port)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
