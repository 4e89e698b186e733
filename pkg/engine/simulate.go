package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sanonone/qdf/pkg/core"
	"github.com/sanonone/qdf/pkg/metrics"
)

// Simulate advances every leaf by one step of rule.
//
// All next states are computed from the current states first, using up to workers
// goroutines (workers <= 0 means no limit), and only then written back. If ctx is
// cancelled before every leaf is computed no state changes.
func (f *Field[S]) Simulate(ctx context.Context, rule Rule[S], workers int) error {
	start := time.Now()
	leaves := f.store.Leaves()
	next := make([]S, len(leaves))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, id := range leaves {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sp, err := f.store.Get(id)
			if err != nil {
				return err
			}
			neighbors := f.graph.view(id)
			states := make([]S, 0, len(neighbors))
			for _, n := range neighbors {
				nsp, err := f.store.Get(n)
				if err != nil {
					return err
				}
				states = append(states, nsp.State())
			}
			next[i] = rule(sp.State(), states)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("simulation aborted: %w", err)
	}

	for i, id := range leaves {
		if err := f.store.SetState(id, next[i]); err != nil {
			return err
		}
	}

	if !f.opts.DisableMetrics {
		metrics.SimulationStepDuration.WithLabelValues(f.opts.Name).Observe(time.Since(start).Seconds())
	}
	f.log.Debug("simulation step", "leaves", len(leaves), "took", time.Since(start))
	return nil
}

// AggregateState folds the leaf states below id with merge, bottom-up.
// For a leaf it returns the leaf's own state.
func (f *Field[S]) AggregateState(id core.ID, merge func([]S) S) (S, error) {
	sp, err := f.store.Get(id)
	if err != nil {
		var zero S
		return zero, err
	}
	if sp.IsLeaf() {
		return sp.State(), nil
	}
	children := sp.Children()
	states := make([]S, len(children))
	for i, c := range children {
		if states[i], err = f.AggregateState(c, merge); err != nil {
			return states[i], err
		}
	}
	return merge(states), nil
}
