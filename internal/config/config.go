// Package config loads service configuration from defaults, an optional
// config file, command-line flags and LINKSOC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"linksoc/internal/core/labelcode"
)

// EnvPrefix prefixes every environment variable, e.g. LINKSOC_DATABASE_URL.
const EnvPrefix = "LINKSOC"

// Config is the full service configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Labels      LabelsConfig      `mapstructure:"labels"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Audit       AuditConfig       `mapstructure:"audit"`
}

type AppConfig struct {
	Env string `mapstructure:"env"` // development, production
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// DatabaseConfig selects the store. An empty URL runs the in-memory store.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LabelsConfig struct {
	Prefix        string `mapstructure:"prefix"`
	SeriePadWidth int    `mapstructure:"serie_pad_width"`
	MaxCode       int    `mapstructure:"max_code"`
	MaxBatch      int    `mapstructure:"max_batch"`
}

type IdempotencyConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type AuditConfig struct {
	CompressThreshold int `mapstructure:"compress_threshold"`
}

// Development reports whether the service runs in development mode.
func (c *Config) Development() bool {
	return c.App.Env == "development"
}

// MemoryStore reports whether no database is configured.
func (c *Config) MemoryStore() bool {
	return strings.TrimSpace(c.Database.URL) == ""
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		if !c.Development() {
			return errors.New("jwt.secret is required outside development")
		}
	}
	if c.Labels.MaxCode < 1 {
		return fmt.Errorf("labels.max_code must be positive, got %d", c.Labels.MaxCode)
	}
	if c.Labels.MaxBatch < 1 {
		return fmt.Errorf("labels.max_batch must be positive, got %d", c.Labels.MaxBatch)
	}
	return nil
}

// Flags returns the flag set understood by Load.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "configuration file (yaml, json or toml)")
	fs.String("http-addr", "", "HTTP listen address")
	fs.String("database-url", "", "PostgreSQL DSN (empty runs the in-memory store)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	return fs
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"http-addr":    "http.addr",
	"database-url": "database.url",
	"log-level":    "log.level",
}

// Load parses arguments with fs and returns the merged configuration.
// Precedence: flags, environment, config file, defaults.
func Load(fs *pflag.FlagSet, arguments []string) (*Config, error) {
	if err := fs.Parse(arguments); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if f := fs.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	if file, _ := fs.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read configuration file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.migrate", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "linksoc")
	v.SetDefault("jwt.ttl", 12*time.Hour)

	v.SetDefault("labels.prefix", labelcode.DefaultPrefix)
	v.SetDefault("labels.serie_pad_width", labelcode.DefaultSeriePadWidth)
	v.SetDefault("labels.max_code", labelcode.MaxCode)
	v.SetDefault("labels.max_batch", 100)

	v.SetDefault("idempotency.enabled", true)
	v.SetDefault("idempotency.ttl", 24*time.Hour)
	v.SetDefault("idempotency.cleanup_interval", time.Hour)

	v.SetDefault("audit.compress_threshold", 4096)
}
