package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrEmailExists is returned when an insert violates the users.email
	// unique key.
	ErrEmailExists = errors.New("email already exists")
	// ErrDuplicate is returned for other unique-key violations (product
	// names, table numbers).
	ErrDuplicate = errors.New("duplicate record")
)
