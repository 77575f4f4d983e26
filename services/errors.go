package services

import (
	"errors"
	"fmt"
)

// Deny reasons surfaced to dashboards so they can render the exact next step
// instead of a generic failure.
const (
	DenyQuotaExhausted   = "QUOTA_EXHAUSTED"
	DenyInsufficientTier = "INSUFFICIENT_TIER"
	DenyAlreadyUnlocked  = "ALREADY_UNLOCKED"
	DenyReasonRequired   = "REASON_REQUIRED"
)

var (
	// ErrLockNotFound means the lock id does not resolve to any record.
	ErrLockNotFound = errors.New("lock record not found")

	// ErrConcurrencyConflict means a concurrent unlock won the version check.
	// The unlock service retries once with fresh state before surfacing this.
	ErrConcurrencyConflict = errors.New("lock record was modified concurrently, retry")

	// ErrStoreUnavailable wraps transient datastore failures. No partial
	// state is left behind when it is returned.
	ErrStoreUnavailable = errors.New("lock store unavailable")
)

// AuthorizationError is a policy denial. DenyReason is one of the Deny*
// constants and RequiredLevel names the tier that could act on the lock.
type AuthorizationError struct {
	DenyReason    string
	RequiredLevel string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("unlock denied (%s): requires %s", e.DenyReason, e.RequiredLevel)
}

// ValidationError reports rejected caller input, e.g. a missing justification.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
