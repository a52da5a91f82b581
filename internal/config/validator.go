package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "runner.max_jobs")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateRunner()...)
	errors = append(errors, c.validateCheck()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateRunner() []ValidationError {
	var errors []ValidationError

	if c.Runner.MaxJobs < 1 {
		errors = append(errors, ValidationError{
			Field:   "runner.max_jobs",
			Value:   c.Runner.MaxJobs,
			Message: "must be at least 1",
		})
	}

	return errors
}

func (c *Config) validateCheck() []ValidationError {
	var errors []ValidationError

	if c.Check.Retries < 1 {
		errors = append(errors, ValidationError{
			Field:   "check.retries",
			Value:   c.Check.Retries,
			Message: "must be at least 1",
		})
	}
	if c.Check.RetryDelaySeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "check.retry_delay_seconds",
			Value:   c.Check.RetryDelaySeconds,
			Message: "must not be negative",
		})
	}
	if c.Check.TimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "check.timeout_seconds",
			Value:   c.Check.TimeoutSeconds,
			Message: "must be at least 1",
		})
	}
	if c.Check.Workers < 1 {
		errors = append(errors, ValidationError{
			Field:   "check.workers",
			Value:   c.Check.Workers,
			Message: "must be at least 1",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must not be negative",
		})
	}
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must not be negative",
		})
	}

	return errors
}
