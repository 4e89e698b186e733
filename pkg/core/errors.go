package core

import "errors"

var (
	// ErrNotFound is returned when an id does not exist in the store.
	ErrNotFound = errors.New("space not found")

	// ErrAlreadySubdivided is returned when a split is requested on an internal space.
	ErrAlreadySubdivided = errors.New("space already subdivided")

	// ErrInvalidDimension is returned when a store is created with dimension < 1.
	ErrInvalidDimension = errors.New("dimension must be at least 1")
)
