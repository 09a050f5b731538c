/*
errors.go - Centralized error types for the time & attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP statuses; nothing else in the engine
  inspects error strings.

ERROR CATEGORIES:
  1. Validation errors - Malformed or out-of-sequence input. Surfaced to the
     caller with a human-readable message, never retried automatically.
  2. Not-found errors - Unknown event id, staff number, pay calendar.
  3. Configuration errors - Missing pay rate and similar operator mistakes.
     Logged; the affected staff member is skipped rather than failing a run.
  4. Transaction failures - Any error inside a manual-edit apply batch.
     The whole batch rolls back; no partial state is ever persisted.

USAGE:
  if timeclock.IsClientError(err) { ... 400 ... }
  if timeclock.IsNotFound(err)    { ... 404 ... }
*/
package timeclock

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the base of every rejection caused by caller input,
	// including illegal clock transitions.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is the base of every missing-record error.
	ErrNotFound = errors.New("not found")

	// ErrConfiguration marks operator configuration gaps (e.g. no active pay
	// rate for a contract type). Not fatal to batch operations.
	ErrConfiguration = errors.New("configuration error")

	// ErrTransactionFailed is returned when a reconciliation batch cannot be
	// committed. The batch has been rolled back in full.
	ErrTransactionFailed = errors.New("transaction failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError is a caller-facing rejection with a human-readable message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalidf builds a ValidationError from a format string.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError names the missing record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFoundf builds a NotFoundError.
func NotFoundf(resource string, key any) error {
	return &NotFoundError{Resource: resource, Key: fmt.Sprint(key)}
}

// ConfigurationError names the missing configuration.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConfiguration returns true for operator configuration gaps.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
