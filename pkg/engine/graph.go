package engine

import (
	"slices"

	"github.com/sanonone/qdf/pkg/core"
)

// Adjacency model:
// links[id] holds the neighbors of id in the order the edges were created.
// Every edge is stored on both ends. Spaces without neighbors have no entry.

type adjacency struct {
	links map[core.ID][]core.ID
	edges int
}

func newAdjacency() *adjacency {
	return &adjacency{links: make(map[core.ID][]core.ID)}
}

// link creates the undirected edge a-b. Self loops and duplicates are ignored.
func (g *adjacency) link(a, b core.ID) {
	if a == b || slices.Contains(g.links[a], b) {
		return
	}
	g.links[a] = append(g.links[a], b)
	g.links[b] = append(g.links[b], a)
	g.edges++
}

// unlink removes the edge a-b if present.
func (g *adjacency) unlink(a, b core.ID) {
	if !slices.Contains(g.links[a], b) {
		return
	}
	g.remove(a, b)
	g.remove(b, a)
	g.edges--
}

func (g *adjacency) remove(from, target core.ID) {
	rest := slices.DeleteFunc(g.links[from], func(id core.ID) bool { return id == target })
	if len(rest) == 0 {
		delete(g.links, from)
		return
	}
	g.links[from] = rest
}

// detach removes every edge of id and returns its former neighbors in insertion order.
func (g *adjacency) detach(id core.ID) []core.ID {
	former := slices.Clone(g.links[id])
	for _, m := range former {
		g.unlink(id, m)
	}
	return former
}

// neighbors returns a copy of the neighbor list of id.
func (g *adjacency) neighbors(id core.ID) []core.ID {
	return slices.Clone(g.links[id])
}

// view returns the neighbor list without copying. Callers must not modify it.
func (g *adjacency) view(id core.ID) []core.ID {
	return g.links[id]
}

func (g *adjacency) adjacent(a, b core.ID) bool {
	return slices.Contains(g.links[a], b)
}
