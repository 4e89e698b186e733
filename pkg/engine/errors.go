package engine

import (
	"errors"

	"github.com/sanonone/qdf/pkg/core"
)

// Store errors are re-exported so callers only need this package.
var (
	ErrNotFound          = core.ErrNotFound
	ErrAlreadySubdivided = core.ErrAlreadySubdivided
	ErrInvalidDimension  = core.ErrInvalidDimension
)

var (
	// ErrInvalidEndpoint is returned by FindPath when an endpoint is unknown or not a leaf.
	ErrInvalidEndpoint = errors.New("invalid path endpoint")

	// ErrPathNotFound is returned when the destination cannot be reached from the source.
	ErrPathNotFound = errors.New("path not found")

	// ErrCorruptAdjacency is returned by CheckConsistency. It always indicates a bug.
	ErrCorruptAdjacency = errors.New("adjacency invariant violated")
)
