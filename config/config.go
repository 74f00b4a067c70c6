package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the service configuration, read from the environment.
type Config struct {
	ListenAddr       string        `envconfig:"LISTEN_ADDR" default:":8080"`
	OperationTimeout time.Duration `envconfig:"OPERATION_TIMEOUT" default:"300s"`
	StorageLocation  string        `envconfig:"SNAPSHOT_STORAGE_LOCATION" default:""`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat        string        `envconfig:"LOG_FORMAT" default:"json"`
}

// FromEnv reads and validates the configuration.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("disksnap", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address is required")
	}
	if c.OperationTimeout <= 0 {
		return errors.New("operation timeout must be positive")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return errors.New("log format must be json or console")
	}
	return nil
}
