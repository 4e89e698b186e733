package engine

import (
	"github.com/sanonone/qdf/pkg/core"
	"github.com/sanonone/qdf/pkg/metrics"
)

// IncreaseSpaceDensity splits the leaf id into Dimension()+1 children and returns them
// in creation order.
//
// The children become pairwise adjacent. Every former neighbor of id is re-attached to
// exactly one child, chosen by rehome, and id keeps no edges. The call either applies
// completely or, on error, leaves the field untouched.
func (f *Field[S]) IncreaseSpaceDensity(id core.ID) ([]core.ID, error) {
	children, err := f.store.Split(id, f.opts.Split)
	if err != nil {
		return nil, err
	}

	for i, a := range children {
		for _, b := range children[i+1:] {
			f.graph.link(a, b)
		}
	}

	former := f.graph.detach(id)
	for i, m := range former {
		f.graph.link(children[rehome(i, len(children))], m)
	}

	if !f.opts.DisableMetrics {
		metrics.Subdivisions.WithLabelValues(f.opts.Name).Inc()
	}
	f.observeLeaves()
	f.log.Debug("space subdivided", "space", id, "children", children, "rehomed", len(former))
	return children, nil
}

// rehome maps the i-th former neighbor of a split space (insertion order) to the index
// of the child that inherits the shared side. Child k owns sides k, k+fanout, k+2*fanout...
func rehome(i, fanout int) int {
	return i % fanout
}

// IncreaseSubtreeDensity splits every leaf under id (id itself when it is a leaf) and
// returns all new leaves, grouped per split in depth-first order.
func (f *Field[S]) IncreaseSubtreeDensity(id core.ID) ([]core.ID, error) {
	var targets []core.ID
	err := f.store.Walk(id, func(sp *core.Space[S]) bool {
		if sp.IsLeaf() {
			targets = append(targets, sp.ID())
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	out := make([]core.ID, 0, len(targets)*f.store.Fanout())
	for _, leaf := range targets {
		children, err := f.IncreaseSpaceDensity(leaf)
		if err != nil {
			return out, err
		}
		out = append(out, children...)
	}
	return out, nil
}
