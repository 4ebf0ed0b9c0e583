// Package config loads application configuration from file, environment, and
// defaults, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/capture-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Capture CaptureConfig `yaml:"capture" mapstructure:"capture"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	// Driver is one of file, sqlite, postgres.
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Path is the file or sqlite location.
	Path string `yaml:"path" mapstructure:"path"`
	// DatabaseURL is the postgres connection string.
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// CaptureConfig bounds the capture protocol.
type CaptureConfig struct {
	SettleDelayMS     int `yaml:"settle_delay_ms" mapstructure:"settle_delay_ms"`
	PingTimeoutMS     int `yaml:"ping_timeout_ms" mapstructure:"ping_timeout_ms"`
	InjectSettleMS    int `yaml:"inject_settle_ms" mapstructure:"inject_settle_ms"`
	DispatchTimeoutMS int `yaml:"dispatch_timeout_ms" mapstructure:"dispatch_timeout_ms"`
}

// FetchConfig configures the HTTP page source.
type FetchConfig struct {
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	UserAgent  string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig configures the read-only records server.
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
	v.SetEnvPrefix("CAPTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "capture.json")
	v.SetDefault("capture.settle_delay_ms", 250)
	v.SetDefault("capture.ping_timeout_ms", 2000)
	v.SetDefault("capture.inject_settle_ms", 300)
	v.SetDefault("capture.dispatch_timeout_ms", 10000)
	v.SetDefault("fetch.rate_per_sec", 1.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
