// Package service contains the business logic between the HTTP handlers and
// the database.
package service

import "errors"

// Sentinel errors returned by services; handlers map them to HTTP statuses.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates an ownership violation on update/delete.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., tag name taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates a validation failure caught before any database write.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidToken indicates an expired, malformed or already-used magic-link token.
	ErrInvalidToken = errors.New("invalid or expired token")
)
