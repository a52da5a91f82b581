// Package errors provides centralized error definitions and error handling
// utilities for the erdgen codebase. It defines domain-specific errors,
// semantic error types, error constructors with context wrapping, and error
// classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - ConfigError: invalid configuration (bad concurrency limit, missing tool)
//   - SpawnError: the runner could not start a child process
//   - JobError: a spawned command exited non-zero
//   - ManifestError: errors loading or validating a dataset manifest
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewConfigError("max jobs must be positive", errors.ErrBadConcurrency)
//	err := errors.NewSpawnError("launch generator", baseErr).WithJob("SST_OISST_Mean")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrToolNotFound) { ... }
//
//	var spawnErr *errors.SpawnError
//	if errors.As(err, &spawnErr) { ... }
//
//	if errors.IsConfig(err) { ... }
//	if errors.IsSpawn(err) { ... }
//
// # Error Classification
//
// Configuration and spawn errors abort a run before or during launching;
// job errors never do. Classification helpers let callers distinguish the
// runner's own failure modes from the failures of the commands it runs.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning Severity = iota
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Configuration sentinel errors
var (
	// ErrBadConcurrency indicates a non-positive concurrency limit.
	ErrBadConcurrency = New("concurrency limit must be at least 1")
	// ErrToolNotFound indicates the external generator tool does not exist.
	ErrToolNotFound = New("generator tool not found")
	// ErrNoDatasets indicates the manifest contained no runnable datasets.
	ErrNoDatasets = New("no datasets to process")
)

// Manifest sentinel errors
var (
	// ErrManifestNotFound indicates the manifest file could not be found.
	ErrManifestNotFound = New("manifest not found")
	// ErrManifestInvalid indicates the manifest failed validation.
	ErrManifestInvalid = New("manifest is invalid")
	// ErrDuplicateDatasetID indicates two datasets resolved to the same ID.
	ErrDuplicateDatasetID = New("duplicate dataset ID")
)

// General sentinel errors
var (
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ConfigError represents a configuration problem detected before any job
// is launched. Configuration errors always abort the whole run.
//
// Example:
//
//	err := errors.NewConfigError("validate tools dir", errors.ErrToolNotFound).WithPath("/opt/erddap")
type ConfigError struct {
	baseError
	Path string
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityCritical,
			userFacing: true,
		},
	}
}

// WithPath adds the offending filesystem path to the error context.
func (e *ConfigError) WithPath(path string) *ConfigError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	prefix := "config error"
	if e.Path != "" {
		prefix = fmt.Sprintf("config error [path=%s]", e.Path)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ConfigError) Is(target error) bool {
	if _, ok := target.(*ConfigError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// SpawnError represents the runner's own failure to start a child process
// (resource exhaustion, missing executable at launch time). It is distinct
// from a job's non-zero exit, which is a JobError.
type SpawnError struct {
	baseError
	Job string
}

// NewSpawnError creates a new SpawnError.
func NewSpawnError(message string, cause error) *SpawnError {
	return &SpawnError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityCritical,
			userFacing: true,
		},
	}
}

// WithJob adds the job name to the error context.
func (e *SpawnError) WithJob(name string) *SpawnError {
	e.Job = name
	return e
}

// Error returns the formatted error message.
func (e *SpawnError) Error() string {
	prefix := "spawn error"
	if e.Job != "" {
		prefix = fmt.Sprintf("spawn error [job=%s]", e.Job)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SpawnError) Is(target error) bool {
	if _, ok := target.(*SpawnError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// JobError represents a spawned command exiting with a non-zero status.
// Job errors are recorded but never stop the queue or fail the run.
type JobError struct {
	baseError
	Job      string
	ExitCode int
}

// NewJobError creates a new JobError.
func NewJobError(job string, exitCode int, cause error) *JobError {
	return &JobError{
		baseError: baseError{
			message:    fmt.Sprintf("command exited with code %d", exitCode),
			cause:      cause,
			severity:   SeverityWarning,
			userFacing: true,
		},
		Job:      job,
		ExitCode: exitCode,
	}
}

// Error returns the formatted error message.
func (e *JobError) Error() string {
	if e.Job != "" {
		return fmt.Sprintf("job error [job=%s]: %s", e.Job, e.message)
	}
	return fmt.Sprintf("job error: %s", e.message)
}

// Is checks if this error matches the target.
func (e *JobError) Is(target error) bool {
	if _, ok := target.(*JobError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ManifestError represents errors loading or validating a dataset manifest.
type ManifestError struct {
	baseError
	Path    string
	Dataset string
}

// NewManifestError creates a new ManifestError.
func NewManifestError(message string, cause error) *ManifestError {
	return &ManifestError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithPath adds the manifest path to the error context.
func (e *ManifestError) WithPath(path string) *ManifestError {
	e.Path = path
	return e
}

// WithDataset adds the dataset name to the error context.
func (e *ManifestError) WithDataset(name string) *ManifestError {
	e.Dataset = name
	return e
}

// Error returns the formatted error message.
func (e *ManifestError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	if e.Dataset != "" {
		parts = append(parts, fmt.Sprintf("dataset=%s", e.Dataset))
	}

	prefix := "manifest error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("manifest error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ManifestError) Is(target error) bool {
	if _, ok := target.(*ManifestError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError indicates that a resource could not be found.
type NotFoundError struct {
	baseError
	Resource string
	ID       string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s not found: %s", resource, id),
			severity:   SeverityError,
			userFacing: true,
		},
		Resource: resource,
		ID:       id,
	}
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError indicates that input validation failed.
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    fmt.Sprintf("validation failed for %s: %s", field, message),
			cause:      ErrInvalidInput,
			severity:   SeverityError,
			userFacing: true,
		},
		Field: field,
		Value: value,
	}
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsConfig returns true if the error is a configuration error.
func IsConfig(err error) bool {
	var configErr *ConfigError
	if As(err, &configErr) {
		return true
	}
	return Is(err, ErrBadConcurrency) || Is(err, ErrToolNotFound)
}

// IsSpawn returns true if the error is a runner-level spawn failure.
func IsSpawn(err error) bool {
	var spawnErr *SpawnError
	return As(err, &spawnErr)
}

// IsJobFailure returns true if the error is a job's own non-zero exit,
// as opposed to a failure of the runner itself.
func IsJobFailure(err error) bool {
	var jobErr *JobError
	return As(err, &jobErr)
}

// IsUserFacing returns true if the error message is safe to display to users.
// Unknown error types are considered internal.
func IsUserFacing(err error) bool {
	type userFacer interface {
		IsUserFacing() bool
	}
	var uf userFacer
	if As(err, &uf) {
		return uf.IsUserFacing()
	}
	return false
}

// SeverityOf returns the severity of the error, defaulting to SeverityError
// for error types that do not carry a severity.
func SeverityOf(err error) Severity {
	type severer interface {
		Severity() Severity
	}
	var s severer
	if As(err, &s) {
		return s.Severity()
	}
	return SeverityError
}
