package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a write violated a storage-level unique
	// constraint. It is the final arbiter for racing writes against the
	// same uniqueness key.
	ErrDuplicate = errors.New("repository: duplicate key")
)
