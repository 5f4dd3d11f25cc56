/*
errors.go - Centralized error types for the reconciliation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is / errors.As; the HTTP layer maps these
  onto status codes.

ERROR CATEGORIES:
  1. NotConfigured - persistence backend unavailable (degraded mode)
  2. NotFound      - referenced account or ledger absent
  3. LockedPeriod  - mutation attempted on a finalized period
  4. Validation    - missing required fields on create

SEE ALSO:
  - engine.go:    Raises LockedPeriod / NotFound
  - directory.go: Raises Validation / NotFound
  - store.go:     Implementations raise NotConfigured
*/
package recon

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotConfigured is returned by a Store whose backend is not
	// available. Callers fall back to in-memory defaults rather than
	// failing the user interaction.
	ErrNotConfigured = errors.New("persistence backend not configured")

	// ErrNotFound is returned when a referenced account, chart, or
	// ledger does not exist.
	ErrNotFound = errors.New("not found")

	// ErrLockedPeriod is returned when a mutation targets a finalized
	// period. Finalization is one-way; there is no reopen.
	ErrLockedPeriod = errors.New("period is finalized")

	// ErrValidation is returned when required fields are missing.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which entity was missing.
type NotFoundError struct {
	Kind string // "account", "chart", "reconciliation", "balance"
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found: %s", e.Kind, e.ID) }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// LockedPeriodError identifies the finalized period that rejected a mutation.
type LockedPeriodError struct {
	UserID string
	Year   int
	Month  int
}

func (e *LockedPeriodError) Error() string {
	return fmt.Sprintf("period %d-%02d is finalized and cannot be modified", e.Year, e.Month)
}
func (e *LockedPeriodError) Unwrap() error { return ErrLockedPeriod }

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }
func (e *ValidationError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing entity.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsClientError reports whether the error is due to invalid client input
// rather than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrLockedPeriod)
}
