// Package config loads and validates the sqlforge CLI configuration from
// flags, environment variables and an optional config file.
package config

import (
	"fmt"
	"strings"
)

// Config is the fully resolved CLI configuration.
type Config struct {
	// Table is the insert target. Required.
	Table string `mapstructure:"table"`

	// Columns lists explicit column names. Empty means columns are
	// inferred from the first input record.
	Columns []string `mapstructure:"columns"`

	// Exclude lists column names to drop from the generated statement.
	Exclude []string `mapstructure:"exclude"`

	// Batch emits one multi-row statement instead of one statement per
	// record.
	Batch bool `mapstructure:"batch"`

	// Capitalize upper-cases the statement keywords.
	Capitalize bool `mapstructure:"capitalize"`

	// NullMissing resolves absent fields to NULL instead of failing.
	NullMissing bool `mapstructure:"null_missing"`

	// Input is the records source: a file path, or "-" for stdin.
	Input string `mapstructure:"input"`

	// Format selects the input encoding: "json" (a single object or an
	// array of objects) or "ndjson" (one object per line).
	Format string `mapstructure:"format"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors []ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	if strings.TrimSpace(c.Table) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "table",
			Message: "no table name configured",
			Hint:    "pass --table or set table in the config file",
		})
	}

	switch c.Format {
	case "json", "ndjson":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unknown input format %q", c.Format),
			Hint:    "use json or ndjson",
		})
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown log level %q", c.Log.Level),
			Hint:    "use debug, info, warn or error",
		})
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("unknown log format %q", c.Log.Format),
			Hint:    "use text or json",
		})
	}

	seen := map[string]struct{}{}
	for _, name := range c.Columns {
		if strings.TrimSpace(name) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "columns",
				Message: "column list contains an empty name",
			})
			continue
		}
		if _, dup := seen[name]; dup {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "columns",
				Message: fmt.Sprintf("duplicate column %q", name),
				Hint:    "duplicates are dropped during generation; remove the extra entry",
			})
		}
		seen[name] = struct{}{}
	}

	return result
}
