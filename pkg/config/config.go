// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/David-Botos/message-ingress/pkg/model"
)

// DefaultEnvFile is loaded from the working directory when present
const DefaultEnvFile = ".env"

// Config represents the application configuration
type Config struct {
	// Sink settings
	BatchSize        int
	StatementTimeout time.Duration
	MaxOpenConns     int

	// Transform settings
	CategoryValidation model.ValidationMode

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables. Every setting has a
// default; a .env file in the working directory is applied first if it exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
	}

	mode, err := model.ParseValidationMode(getEnv("CATEGORY_VALIDATION", string(model.ValidationPositional)))
	if err != nil {
		return nil, err
	}

	batchSize, err := getEnvAsInt("BATCH_SIZE", 500)
	if err != nil {
		return nil, err
	}
	timeoutSeconds, err := getEnvAsInt("STATEMENT_TIMEOUT_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	maxOpenConns, err := getEnvAsInt("MAX_OPEN_CONNS", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BatchSize:          batchSize,
		StatementTimeout:   time.Duration(timeoutSeconds) * time.Second,
		MaxOpenConns:       maxOpenConns,
		CategoryValidation: mode,
		LogLevel:           getEnv("LOG_LEVEL", "warn"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		BatchSize:          500,
		StatementTimeout:   300 * time.Second,
		MaxOpenConns:       1,
		CategoryValidation: model.ValidationPositional,
		LogLevel:           "warn",
		LogFormat:          "console",
	}
}

// Validate ensures all configuration values are usable
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}

	if c.StatementTimeout <= 0 {
		return errors.New("statement timeout must be positive")
	}

	if c.MaxOpenConns <= 0 {
		return errors.New("max open connections must be positive")
	}

	if _, err := model.ParseValidationMode(string(c.CategoryValidation)); err != nil {
		return err
	}

	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", key, valueStr)
	}
	return value, nil
}
