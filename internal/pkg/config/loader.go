package config

import (
	"fmt"
	"os"
	"time"
)

// ConfigLoadResult carries a loaded value plus the fallback bookkeeping
// the caller needs for logging and metrics. Value holds the typed result
// and must be asserted back by the caller.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

func okResult(value interface{}) ConfigLoadResult {
	return ConfigLoadResult{Value: value}
}

func fallbackResult(value interface{}, envKey, raw string, err error) ConfigLoadResult {
	return ConfigLoadResult{
		Value:           value,
		Warnings:        []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, err, value)},
		FallbackApplied: true,
	}
}

// LoadEnvString reads a string from the environment, returning the
// default when the variable is unset or empty. No validation.
func LoadEnvString(envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvWithFallback reads a string and validates it; an invalid value
// degrades to the default with a warning instead of failing. An unset
// variable uses the default silently. validator may be nil.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return okResult(defaultValue)
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return fallbackResult(defaultValue, envKey, value, err)
		}
	}
	return okResult(value)
}

// LoadEnvDuration reads a Go duration string ("30s", "5m", "1h30m").
// Parse or validation failures fall back to the default with a warning.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return okResult(defaultValue)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallbackResult(defaultValue, envKey, raw, err)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(defaultValue, envKey, raw, err)
		}
	}
	return okResult(parsed)
}

// LoadEnvInt reads an integer. Parse or validation failures fall back
// to the default with a warning.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return okResult(defaultValue)
	}
	var parsed int
	if _, err := fmt.Sscanf(raw, "%d", &parsed); err != nil {
		return fallbackResult(defaultValue, envKey, raw, fmt.Errorf("invalid integer format"))
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(defaultValue, envKey, raw, err)
		}
	}
	return okResult(parsed)
}

// LoadEnvBool reads a boolean. Accepted spellings follow strconv:
// "1"/"t"/"true" and "0"/"f"/"false" in any common case. Anything else
// falls back to the default with a warning.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return okResult(defaultValue)
	}
	switch raw {
	case "1", "t", "T", "true", "TRUE", "True":
		return okResult(true)
	case "0", "f", "F", "false", "FALSE", "False":
		return okResult(false)
	default:
		return fallbackResult(defaultValue, envKey, raw, fmt.Errorf("invalid boolean format, expected 'true' or 'false'"))
	}
}
