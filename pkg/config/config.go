package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/marketreplay/backtester/pkg/questdb"
	"gopkg.in/yaml.v3"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // .env file is optional

	if err := env.Parse(cfg); err != nil {
		return err // Return error if environment variable parsing fails
	}

	return nil
}

// Config holds the configuration for the application
type Config struct {
	DataRoot   string `env:"DATA_ROOT" envDefault:"data"`          // Root directory of the round/day CSV files
	DataSource string `env:"DATA_SOURCE" envDefault:"csv"`         // Market record store backend: csv or questdb
	LimitsFile string `env:"LIMITS_FILE"`                          // Optional YAML file overriding the position limit table
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`          // Minimum log level
	OutputDir  string `env:"OUTPUT_DIR" envDefault:"backtests"`    // Directory for generated output logs

	QuestDB questdb.Config `envPrefix:"QUESTDB_"` // QuestDB configuration (used when DATA_SOURCE=questdb)
}

// LoadLimits reads a product -> position limit table from a YAML file.
func LoadLimits(path string) (map[string]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read limits file: %w", err)
	}

	limits := make(map[string]int)
	if err := yaml.Unmarshal(raw, &limits); err != nil {
		return nil, fmt.Errorf("failed to parse limits file: %w", err)
	}

	for product, limit := range limits {
		if limit < 0 {
			return nil, fmt.Errorf("limit for product %s must be non-negative, got %d", product, limit)
		}
	}

	return limits, nil
}
