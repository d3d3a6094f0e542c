package domain

import "errors"

var (
	// ErrNotFound is returned when an operation targets a todo that does not
	// exist for the caller.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for rejected input, e.g. an empty name.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized is returned when no valid session is present.
	ErrUnauthorized = errors.New("unauthorized")
)
