// Package common defines shared constants and sentinel errors used across
// accountd layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Input errors, detected before any side effect.
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("already exists")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Auth errors: bad secret, or an invalid, expired or replayed token.
	ErrAuthentication = errors.New("authentication failed")

	// Remote object-store failure.
	ErrUpload = errors.New("upload failed")

	// Repository write failure after at least one external side effect.
	ErrPersistence = errors.New("persistence failed")

	// Generic internal flow control.
	ErrInternal = errors.New("internal error")
)
