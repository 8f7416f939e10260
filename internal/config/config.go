package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment
type Config struct {
	Addr   string `env:"DREAMBALANCE_ADDR" envDefault:":5001"`
	DBPath string `env:"DREAMBALANCE_DB_PATH" envDefault:"database/dreambalance_v2.db"`

	JWTSecret string        `env:"DREAMBALANCE_JWT_SECRET"`
	TokenTTL  time.Duration `env:"DREAMBALANCE_TOKEN_TTL" envDefault:"24h"`

	LogLevel  string `env:"DREAMBALANCE_LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"DREAMBALANCE_LOG_PRETTY" envDefault:"false"`

	ClassifierURL     string        `env:"DREAMBALANCE_CLASSIFIER_URL"`
	ClassifierToken   string        `env:"DREAMBALANCE_CLASSIFIER_TOKEN"`
	ClassifierTimeout time.Duration `env:"DREAMBALANCE_CLASSIFIER_TIMEOUT" envDefault:"30s"`

	AuthRate  float64 `env:"DREAMBALANCE_AUTH_RATE" envDefault:"5"`
	AuthBurst int     `env:"DREAMBALANCE_AUTH_BURST" envDefault:"20"`
}

// Load reads an optional dotenv file and then parses the environment.
// Variables already set in the environment win over the file.
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// ValidateServe checks the settings the HTTP server cannot run without
func (c *Config) ValidateServe() error {
	if c.JWTSecret == "" {
		return errors.New("DREAMBALANCE_JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("DREAMBALANCE_TOKEN_TTL must be positive")
	}
	if c.AuthRate <= 0 || c.AuthBurst <= 0 {
		return errors.New("DREAMBALANCE_AUTH_RATE and DREAMBALANCE_AUTH_BURST must be positive")
	}
	return nil
}
