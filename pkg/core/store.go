// Package core provides the space hierarchy store of a quantized density field.
//
// The store is an append-only arena: every space lives in one slice and is addressed
// by its ID. Parent and child links are plain ids, never pointers, so the hierarchy
// has no shared ownership. The store knows nothing about adjacency; that relation is
// maintained by the engine package.
//
// A Store is not safe for concurrent use. The owner must serialize access.

package core

import (
	"fmt"

	"github.com/tidwall/btree"
)

// Store owns every space of a field.
type Store[S any] struct {
	dimension int
	spaces    []*Space[S]
	roots     []ID

	// leaves keeps the current partition ordered by id.
	leaves btree.Set[ID]
}

// NewStore creates a store holding a single root leaf with the given state.
func NewStore[S any](dimension int, initial S) (*Store[S], ID, error) {
	if dimension < 1 {
		return nil, 0, fmt.Errorf("%w: got %d", ErrInvalidDimension, dimension)
	}
	s := &Store[S]{dimension: dimension}
	root := s.AddRoot(initial)
	return s, root, nil
}

// AddRoot allocates a new, independent root leaf. Hierarchies under different roots
// never share adjacency.
func (s *Store[S]) AddRoot(state S) ID {
	id := s.alloc(state)
	s.roots = append(s.roots, id)
	return id
}

func (s *Store[S]) alloc(state S) ID {
	id := ID(len(s.spaces))
	s.spaces = append(s.spaces, &Space[S]{id: id, state: state})
	s.leaves.Insert(id)
	return id
}

// Dimension returns the dimensionality shared by all spaces.
func (s *Store[S]) Dimension() int { return s.dimension }

// Fanout is the number of children produced by one split (dimension + 1).
func (s *Store[S]) Fanout() int { return s.dimension + 1 }

// Len returns the number of spaces ever allocated.
func (s *Store[S]) Len() int { return len(s.spaces) }

// LeafCount returns the size of the current partition.
func (s *Store[S]) LeafCount() int { return s.leaves.Len() }

func (s *Store[S]) Exists(id ID) bool {
	return uint64(id) < uint64(len(s.spaces))
}

// Get resolves an id to its space.
func (s *Store[S]) Get(id ID) (*Space[S], error) {
	if !s.Exists(id) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.spaces[id], nil
}

// ChildrenOf returns the ordered child ids of id; empty for leaves.
func (s *Store[S]) ChildrenOf(id ID) ([]ID, error) {
	sp, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return sp.Children(), nil
}

func (s *Store[S]) IsLeaf(id ID) (bool, error) {
	sp, err := s.Get(id)
	if err != nil {
		return false, err
	}
	return sp.IsLeaf(), nil
}

// RootOf walks parent links up to the root owning id.
func (s *Store[S]) RootOf(id ID) (ID, error) {
	sp, err := s.Get(id)
	if err != nil {
		return 0, err
	}
	for sp.hasParent {
		sp = s.spaces[sp.parent]
	}
	return sp.id, nil
}

// Roots returns the root ids in creation order.
func (s *Store[S]) Roots() []ID {
	out := make([]ID, len(s.roots))
	copy(out, s.roots)
	return out
}

// Leaves returns the ids of all leaf spaces in ascending order.
func (s *Store[S]) Leaves() []ID {
	out := make([]ID, 0, s.leaves.Len())
	s.leaves.Scan(func(id ID) bool {
		out = append(out, id)
		return true
	})
	return out
}

// SetState overrides the state of a space.
func (s *Store[S]) SetState(id ID, state S) error {
	sp, err := s.Get(id)
	if err != nil {
		return err
	}
	sp.state = state
	return nil
}

// Split turns the leaf id into an internal space with Fanout() children.
// Child k receives split(parentState, Fanout()). On error nothing is modified.
func (s *Store[S]) Split(id ID, split func(S, int) S) ([]ID, error) {
	sp, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !sp.IsLeaf() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadySubdivided, id)
	}

	n := s.Fanout()
	children := make([]ID, n)
	for k := range children {
		cid := s.alloc(split(sp.state, n))
		child := s.spaces[cid]
		child.parent = id
		child.hasParent = true
		child.depth = sp.depth + 1
		children[k] = cid
	}
	sp.children = children
	s.leaves.Delete(id)
	return sp.Children(), nil
}

// Walk visits id and all of its descendants depth-first, children in order.
// Returning false from fn stops the walk.
func (s *Store[S]) Walk(id ID, fn func(*Space[S]) bool) error {
	sp, err := s.Get(id)
	if err != nil {
		return err
	}
	s.walk(sp, fn)
	return nil
}

func (s *Store[S]) walk(sp *Space[S], fn func(*Space[S]) bool) bool {
	if !fn(sp) {
		return false
	}
	for _, c := range sp.children {
		if !s.walk(s.spaces[c], fn) {
			return false
		}
	}
	return true
}
