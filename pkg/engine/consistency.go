package engine

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/sanonone/qdf/pkg/core"
)

// CheckConsistency verifies the adjacency invariants and returns every violation
// found, joined, each wrapping ErrCorruptAdjacency:
//   - edges are symmetric, without self loops or duplicates
//   - only existing leaf spaces carry edges
//   - the leaves of each root form exactly one connected component
func (f *Field[S]) CheckConsistency() error {
	var errs []error
	violation := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrCorruptAdjacency, fmt.Sprintf(format, args...)))
	}

	for _, id := range slices.Sorted(maps.Keys(f.graph.links)) {
		ns := f.graph.view(id)
		sp, err := f.store.Get(id)
		if err != nil {
			violation("edges recorded for unknown %s", id)
			continue
		}
		if !sp.IsLeaf() {
			violation("internal %s has %d neighbors", id, len(ns))
		}
		seen := make(map[core.ID]struct{}, len(ns))
		for _, n := range ns {
			if n == id {
				violation("self loop on %s", id)
			}
			if _, dup := seen[n]; dup {
				violation("duplicate edge %s-%s", id, n)
			}
			seen[n] = struct{}{}
			if !f.graph.adjacent(n, id) {
				violation("edge %s-%s is not symmetric", id, n)
			}
		}
	}

	roots := f.store.Roots()
	components := topo.ConnectedComponents(f.LeafGraph())
	owners := make(map[core.ID]int, len(roots))
	for _, comp := range components {
		var owner core.ID
		for i, n := range comp {
			r, err := f.store.RootOf(core.ID(n.ID()))
			if err != nil {
				violation("leaf graph node %d not in store", n.ID())
				continue
			}
			if i == 0 {
				owner = r
			} else if r != owner {
				violation("component links hierarchies of %s and %s", owner, r)
			}
		}
		owners[owner]++
	}
	for _, r := range roots {
		if owners[r] != 1 {
			violation("leaves of %s form %d components", r, owners[r])
		}
	}

	return errors.Join(errs...)
}

// LeafGraph exports the adjacency between leaves as a gonum undirected graph.
// Node ids equal space ids.
func (f *Field[S]) LeafGraph() *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	leaves := f.store.Leaves()
	for _, id := range leaves {
		g.AddNode(simple.Node(int64(id)))
	}
	for _, id := range leaves {
		for _, n := range f.graph.view(id) {
			if n <= id || g.Node(int64(n)) == nil {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(int64(id)), simple.Node(int64(n))))
		}
	}
	return g
}
