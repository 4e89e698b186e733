// Package engine maintains the neighbor graph of a quantized density field.
//
// A Field owns a core.Store and an adjacency relation between its spaces. Increasing
// the density of a leaf splits it into dimension+1 children, makes the children
// mutually adjacent and hands every former neighbor of the leaf to one of them.
// FindPath then searches the leaf graph breadth-first.
//
// Basic usage:
//
//	f, root, err := engine.New(2, 9.0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	children, _ := f.IncreaseSpaceDensity(root)
//	path, _ := f.FindPath(children[0], children[2])
//
// A Field is owned by a single goroutine. Callers sharing one across goroutines must
// guard every call with their own lock.
package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/sanonone/qdf/pkg/core"
	"github.com/sanonone/qdf/pkg/metrics"
)

// Options configures a Field.
type Options[S any] struct {
	// Name labels the field in metrics and log records (default: "default").
	Name string

	// Logger receives debug records for subdivisions and path searches.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// Split derives child states at subdivision time (default: CopyState).
	Split SplitFunc[S]

	// DisableMetrics turns off the Prometheus collectors for this field.
	DisableMetrics bool
}

// DefaultOptions returns the configuration used by New.
func DefaultOptions[S any]() Options[S] {
	return Options[S]{
		Name:   "default",
		Logger: slog.Default(),
		Split:  CopyState[S],
	}
}

// Field is a hierarchy of spaces plus the adjacency relation between them.
type Field[S any] struct {
	id    uuid.UUID
	store *core.Store[S]
	graph *adjacency
	opts  Options[S]
	log   *slog.Logger
}

// New creates a field with a single root leaf using DefaultOptions.
func New[S any](dimension int, initial S) (*Field[S], core.ID, error) {
	return NewWithOptions(dimension, initial, DefaultOptions[S]())
}

// NewWithOptions creates a field with a single root leaf. Zero option values fall back
// to the defaults.
func NewWithOptions[S any](dimension int, initial S, opts Options[S]) (*Field[S], core.ID, error) {
	store, root, err := core.NewStore(dimension, initial)
	if err != nil {
		return nil, 0, err
	}

	def := DefaultOptions[S]()
	if opts.Name == "" {
		opts.Name = def.Name
	}
	if opts.Logger == nil {
		opts.Logger = def.Logger
	}
	if opts.Split == nil {
		opts.Split = def.Split
	}

	f := &Field[S]{
		id:    uuid.New(),
		store: store,
		graph: newAdjacency(),
		opts:  opts,
	}
	f.log = opts.Logger.With("field", opts.Name, "field_id", f.id.String())
	f.observeLeaves()
	f.log.Debug("field created", "dimension", dimension, "root", root)
	return f, root, nil
}

// UUID returns the identity of the field.
func (f *Field[S]) UUID() uuid.UUID { return f.id }

func (f *Field[S]) Name() string { return f.opts.Name }

// Dimension returns N; every subdivision produces N+1 children.
func (f *Field[S]) Dimension() int { return f.store.Dimension() }

// Root returns the root created with the field.
func (f *Field[S]) Root() core.ID { return f.store.Roots()[0] }

// Roots returns every root in creation order.
func (f *Field[S]) Roots() []core.ID { return f.store.Roots() }

// AddRoot creates an independent hierarchy inside the same field. Its spaces are never
// linked to the spaces of other roots.
func (f *Field[S]) AddRoot(state S) core.ID {
	id := f.store.AddRoot(state)
	f.observeLeaves()
	f.log.Debug("root added", "root", id)
	return id
}

// Len returns the number of spaces, internal ones included.
func (f *Field[S]) Len() int { return f.store.Len() }

// Space returns a read-only view of a space.
func (f *Field[S]) Space(id core.ID) (*core.Space[S], error) {
	return f.store.Get(id)
}

func (f *Field[S]) State(id core.ID) (S, error) {
	sp, err := f.store.Get(id)
	if err != nil {
		var zero S
		return zero, err
	}
	return sp.State(), nil
}

// SetState overrides the state of a space.
func (f *Field[S]) SetState(id core.ID, state S) error {
	return f.store.SetState(id, state)
}

// Parent returns the parent of id; ok is false for roots.
func (f *Field[S]) Parent(id core.ID) (parent core.ID, ok bool, err error) {
	sp, err := f.store.Get(id)
	if err != nil {
		return 0, false, err
	}
	parent, ok = sp.Parent()
	return parent, ok, nil
}

func (f *Field[S]) Children(id core.ID) ([]core.ID, error) {
	return f.store.ChildrenOf(id)
}

func (f *Field[S]) IsLeaf(id core.ID) (bool, error) {
	return f.store.IsLeaf(id)
}

// Leaves returns the current partition in ascending id order.
func (f *Field[S]) Leaves() []core.ID {
	return f.store.Leaves()
}

// Neighbors returns the spaces adjacent to id in insertion order.
// Internal spaces have no neighbors.
func (f *Field[S]) Neighbors(id core.ID) ([]core.ID, error) {
	if _, err := f.store.Get(id); err != nil {
		return nil, err
	}
	return f.graph.neighbors(id), nil
}

// EdgeCount returns the number of undirected adjacency edges.
func (f *Field[S]) EdgeCount() int { return f.graph.edges }

func (f *Field[S]) observeLeaves() {
	if f.opts.DisableMetrics {
		return
	}
	metrics.LeafSpaces.WithLabelValues(f.opts.Name).Set(float64(f.store.LeafCount()))
}
