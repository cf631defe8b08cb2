// Package common defines shared constants and sentinel errors used across
// the ledger components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("duplicate record id")

	// Router / credential errors.
	ErrAuthRequired = errors.New("authentication required")
	ErrInvalidToken = errors.New("invalid token")

	// Validation errors (per-record, never fatal to a batch).
	ErrValidation = errors.New("validation error")

	// Backup document errors (structural, fatal to the whole import).
	ErrUnsupportedVersion = errors.New("unsupported backup version")
	ErrMalformedDocument  = errors.New("malformed backup document")
)
