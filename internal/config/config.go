// Package config provides service configuration from the environment.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"printquote/internal/errors"
	"printquote/internal/logging"
)

// Config is the main service configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig

	// LogLevel is the minimum log level.
	LogLevel string `env:"PRINTQUOTE_LOG_LEVEL" envDefault:"info"`

	// LogFormat is the log output format (json, console).
	LogFormat string `env:"PRINTQUOTE_LOG_FORMAT" envDefault:"console"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr         string `env:"PRINTQUOTE_ADDR"          envDefault:":8080"`
	ReadTimeout  int    `env:"PRINTQUOTE_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int    `env:"PRINTQUOTE_WRITE_TIMEOUT" envDefault:"30"`
}

// StorageConfig contains catalog storage settings.
type StorageConfig struct {
	// DatabasePath is the path to the SQLite catalog database.
	DatabasePath string `env:"PRINTQUOTE_DB" envDefault:"printquote.db"`

	// SeedDefaults seeds the default rate catalog into an empty database.
	SeedDefaults bool `env:"PRINTQUOTE_SEED_DEFAULTS" envDefault:"true"`
}

// Load reads .env files and parses configuration from the environment.
func Load() (*Config, error) {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "parse environment", err)
	}
	return cfg, nil
}

// LoggingConfig maps the flat log settings onto the logging package config.
func (c *Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.LogLevel
	lc.Format = c.LogFormat
	return lc
}
