package core

import (
	"fmt"
	"slices"
)

// ID identifies a space inside a Store. Ids are assigned sequentially and never reused.
type ID uint64

func (id ID) String() string {
	return fmt.Sprintf("space-%d", uint64(id))
}

// Space is a single node of the subdivision hierarchy.
// A space without children is a leaf ("platonic" space).
type Space[S any] struct {
	id        ID
	parent    ID
	hasParent bool
	depth     int
	state     S
	children  []ID
}

func (s *Space[S]) ID() ID { return s.id }

// Parent returns the owning space. ok is false for roots.
func (s *Space[S]) Parent() (parent ID, ok bool) {
	return s.parent, s.hasParent
}

func (s *Space[S]) State() S { return s.state }

// Depth is the number of subdivisions between the space and its root.
func (s *Space[S]) Depth() int { return s.depth }

// Children returns a copy of the ordered child ids.
func (s *Space[S]) Children() []ID {
	return slices.Clone(s.children)
}

func (s *Space[S]) IsLeaf() bool { return len(s.children) == 0 }
