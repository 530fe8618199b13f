package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Dispatch errors
	ErrMsgUnknownAction = "unknown action"
	ErrMsgValidation    = "validation failed"

	// Relationship errors
	ErrMsgInvalidTransition = "invalid relationship transition"

	// Backend substrate errors
	ErrMsgBackend    = "backend procedure failed"
	ErrMsgConnection = "backend unreachable"

	// Identity errors
	ErrMsgUnauthenticated  = "authentication required"
	ErrMsgIdentityMismatch = "identity mismatch"

	// User errors
	ErrMsgUserNotFound = "user not found"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// ErrUnknownAction is returned when an action string has no registry entry.
	ErrUnknownAction = errors.New(ErrMsgUnknownAction)

	// ErrValidation is the base error for all request validation failures.
	ErrValidation = errors.New(ErrMsgValidation)

	// ErrInvalidTransition is returned when a friend-relationship state
	// precondition is violated (e.g. accepting a request that was never made).
	ErrInvalidTransition = errors.New(ErrMsgInvalidTransition)

	// ErrBackend is returned when a backend procedure executed but failed.
	ErrBackend = errors.New(ErrMsgBackend)

	// ErrConnection is returned when the backend substrate could not be
	// reached or the call timed out. Callers may retry.
	ErrConnection = errors.New(ErrMsgConnection)

	// Identity errors
	ErrUnauthenticated  = errors.New(ErrMsgUnauthenticated)
	ErrIdentityMismatch = errors.New(ErrMsgIdentityMismatch)

	// User errors
	ErrUserNotFound = errors.New(ErrMsgUserNotFound)
)
