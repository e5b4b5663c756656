package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStateConflict is returned when a guarded status transition matched
	// no row, meaning the payment was not in the expected source state.
	ErrStateConflict = errors.New("payment not in expected state")
)
