// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Load a .env file via godotenv (non-fatal if absent).
//  2. Use envconfig to process struct tags and populate the Config struct.
//  3. Validate the struct using go-playground/validator.
//  4. Resolve the route timezone so an invalid zone fails at startup rather
//     than mid-report.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is a diagnostic error type returned by Load to aid debugging.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load reads and validates the routecast configuration from the environment.
func Load() (*Config, error) {
	// godotenv silently succeeds when no .env file exists and never
	// overrides variables already set in the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	if _, err := time.LoadLocation(cfg.Route.Timezone); err != nil {
		return nil, &ConfigError{
			Type:    ErrTimezone,
			Message: fmt.Sprintf("unknown route timezone %q", cfg.Route.Timezone),
			Err:     err,
		}
	}

	return &cfg, nil
}

// Location returns the route's resolved time zone. Load validated the zone,
// so failures here indicate the tzdata set changed underneath the process.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Route.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// StartDate returns the parsed route start date in the route timezone.
func (c *Config) StartDate() time.Time {
	t, err := time.ParseInLocation("2006-01-02", c.Route.StartDate, c.Location())
	if err != nil {
		return time.Time{}
	}
	return t
}
