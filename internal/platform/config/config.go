// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every setting the server reads at startup.
// Keys are the lower-cased environment variable names (DB_DRIVER -> db_driver).
type Config struct {
	AppEnv string `koanf:"app_env" validate:"required"`
	Port   string `koanf:"port" validate:"required,numeric"`

	DBDriver        string `koanf:"db_driver" validate:"oneof=sqlite postgres"`
	DBDSN           string `koanf:"db_dsn" validate:"required"`
	DBEnableLogging bool   `koanf:"db_enable_logging"`

	RedisHost     string        `koanf:"redis_host"`
	RedisPort     string        `koanf:"redis_port" validate:"omitempty,numeric"`
	RedisPassword string        `koanf:"redis_password"`
	CacheTTL      time.Duration `koanf:"cache_ttl" validate:"gte=0"`

	// CORSAllowedOrigins is a comma-separated origin list; empty allows any origin.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`
}

// Defaults returns the configuration used when no environment is set.
func Defaults() Config {
	return Config{
		AppEnv:    "development",
		Port:      "5000",
		DBDriver:  DriverSQLite,
		DBDSN:     "fsjstd-restapi.db",
		RedisPort: "6379",
		CacheTTL:  5 * time.Minute,
	}
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// RedisEnabled reports whether a Redis host has been configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// CORSOrigins splits CORSAllowedOrigins, dropping blanks.
func (c *Config) CORSOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Load reads the process environment on top of Defaults and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Empty variables are skipped so they fall back to Defaults.
	provider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
