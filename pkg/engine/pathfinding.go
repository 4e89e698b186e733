package engine

import (
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/sanonone/qdf/pkg/core"
	"github.com/sanonone/qdf/pkg/metrics"
)

// FindPath returns a shortest path (by hop count) between two leaves, endpoints
// included. Neighbors are expanded in adjacency insertion order, so among several
// shortest paths the one through the earliest discovered neighbor wins.
func (f *Field[S]) FindPath(sourceID, targetID core.ID) ([]core.ID, error) {
	for _, id := range []core.ID{sourceID, targetID} {
		if err := f.checkEndpoint(id); err != nil {
			f.observePath(metrics.ResultInvalid, 0)
			return nil, err
		}
	}
	if sourceID == targetID {
		f.observePath(metrics.ResultFound, 1)
		return []core.ID{sourceID}, nil
	}

	visited := roaring64.New()
	visited.Add(uint64(sourceID))
	parents := map[core.ID]core.ID{}
	queue := []core.ID{sourceID}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, next := range f.graph.view(curr) {
			if visited.Contains(uint64(next)) {
				continue
			}
			visited.Add(uint64(next))
			if leaf, _ := f.store.IsLeaf(next); !leaf {
				continue
			}
			parents[next] = curr
			if next == targetID {
				path := tracePath(parents, sourceID, targetID)
				f.observePath(metrics.ResultFound, len(path))
				f.log.Debug("path found", "source", sourceID, "target", targetID, "hops", len(path)-1,
					"visited", visited.GetCardinality())
				return path, nil
			}
			queue = append(queue, next)
		}
	}

	f.observePath(metrics.ResultNotFound, 0)
	f.log.Debug("path not found", "source", sourceID, "target", targetID, "visited", visited.GetCardinality())
	return nil, fmt.Errorf("%w: %s -> %s", ErrPathNotFound, sourceID, targetID)
}

func (f *Field[S]) checkEndpoint(id core.ID) error {
	sp, err := f.store.Get(id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if !sp.IsLeaf() {
		return fmt.Errorf("%w: %s is subdivided", ErrInvalidEndpoint, id)
	}
	return nil
}

// tracePath walks parents back from target and returns source -> ... -> target.
func tracePath(parents map[core.ID]core.ID, source, target core.ID) []core.ID {
	path := []core.ID{target}
	for curr := target; curr != source; {
		curr = parents[curr]
		path = append(path, curr)
	}
	slices.Reverse(path)
	return path
}

func (f *Field[S]) observePath(result string, length int) {
	if f.opts.DisableMetrics {
		return
	}
	metrics.PathQueries.WithLabelValues(f.opts.Name, result).Inc()
	if result == metrics.ResultFound {
		metrics.PathHops.WithLabelValues(f.opts.Name).Observe(float64(length - 1))
	}
}
