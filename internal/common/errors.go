// Package common defines shared constants and sentinel errors used across
// gophvault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("authentication required")

	// Validation errors, reported before any cryptographic work.
	ErrInvalidInput   = errors.New("invalid input")
	ErrLabelRequired  = errors.New("label required")
	ErrSecretRequired = errors.New("secret required")
	ErrBlobRequired   = errors.New("blob required")

	// Vault password refused. Also used for reveal against a vault that was never set up.
	ErrIncorrectPassword = errors.New("incorrect password")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Startup errors.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)
