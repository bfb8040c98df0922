package services

import "errors"

// Sentinel errors separating the three failure kinds every operation can
// report. Controllers translate them to HTTP statuses; nothing below this
// layer knows about HTTP.
var (
	// ErrNotFound marks a lookup against a nonexistent entity id.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks an authorization refusal. State is never mutated.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalid marks a validation failure reported before any write.
	ErrInvalid = errors.New("invalid input")
)
