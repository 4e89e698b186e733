package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/qdf/pkg/core"
)

func TestIncreaseSpaceDensity2D(t *testing.T) {
	f, root := newTestField(t, 2, 9)

	s, err := f.IncreaseSpaceDensity(root)
	require.NoError(t, err)
	require.Len(t, s, 3)
	for _, id := range s {
		st, _ := f.State(id)
		assert.Equal(t, 9, st)
	}
	ns := func(id core.ID) []core.ID {
		out, err := f.Neighbors(id)
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, []core.ID{s[1], s[2]}, ns(s[0]))
	assert.Equal(t, []core.ID{s[0], s[2]}, ns(s[1]))
	assert.Equal(t, []core.ID{s[0], s[1]}, ns(s[2]))

	g, err := f.IncreaseSpaceDensity(s[0])
	require.NoError(t, err)
	assert.Equal(t, []core.ID{g[1], g[2], s[1]}, ns(g[0]))
	assert.Equal(t, []core.ID{g[0], g[2], s[2]}, ns(g[1]))
	assert.Equal(t, []core.ID{g[0], g[1]}, ns(g[2]))
	assert.Empty(t, ns(s[0]))
	assert.Equal(t, []core.ID{s[2], g[0]}, ns(s[1]))
	assert.Equal(t, []core.ID{s[1], g[1]}, ns(s[2]))

	require.NoError(t, f.CheckConsistency())
}

func TestSubdivisionFanout(t *testing.T) {
	for dim := 1; dim <= 5; dim++ {
		f, root := newTestField(t, dim, 0)
		children, err := f.IncreaseSpaceDensity(root)
		require.NoError(t, err)
		assert.Len(t, children, dim+1, "dimension %d", dim)

		leaf, _ := f.IsLeaf(root)
		assert.False(t, leaf)
		ns, _ := f.Neighbors(root)
		assert.Empty(t, ns)

		for _, c := range children {
			parent, ok, err := f.Parent(c)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, root, parent)

			cn, _ := f.Neighbors(c)
			assert.Len(t, cn, dim, "children are pairwise adjacent")
		}
		assert.Equal(t, dim*(dim+1)/2, f.EdgeCount())
	}
}

func TestAdjacencyConservation(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for dim := 1; dim <= 4; dim++ {
		f, _ := newTestField(t, dim, 0)
		for step := 0; step < 40; step++ {
			leaves := f.Leaves()
			id := leaves[rng.IntN(len(leaves))]
			before, _ := f.Neighbors(id)

			children, err := f.IncreaseSpaceDensity(id)
			require.NoError(t, err)

			after, _ := f.Neighbors(id)
			assert.Empty(t, after)
			for _, m := range before {
				found := false
				for _, c := range children {
					if f.graph.adjacent(c, m) {
						found = true
						break
					}
				}
				assert.True(t, found, "dimension %d: former neighbor %s lost", dim, m)
			}
			require.NoError(t, f.CheckConsistency(), "dimension %d step %d", dim, step)
		}
	}
}

func TestSymmetryAfterRandomSubdivisions(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	f, _ := newTestField(t, 3, 0)
	for step := 0; step < 100; step++ {
		leaves := f.Leaves()
		_, err := f.IncreaseSpaceDensity(leaves[rng.IntN(len(leaves))])
		require.NoError(t, err)
	}
	for a, ns := range f.graph.links {
		for _, b := range ns {
			assert.Contains(t, f.graph.links[b], a)
		}
	}
	assert.Equal(t, 1+100*4, f.Len())
	assert.Len(t, f.Leaves(), 1+100*3)
}

func TestResubdivisionFails(t *testing.T) {
	f, root := newTestField(t, 2, 0)
	children, err := f.IncreaseSpaceDensity(root)
	require.NoError(t, err)

	edges, size := f.EdgeCount(), f.Len()
	got, err := f.IncreaseSpaceDensity(root)
	require.ErrorIs(t, err, ErrAlreadySubdivided)
	assert.Nil(t, got)

	assert.Equal(t, edges, f.EdgeCount())
	assert.Equal(t, size, f.Len())
	after, _ := f.Children(root)
	assert.Equal(t, children, after)
	assert.Equal(t, children, f.Leaves())
}

func TestRehomeWrapsAroundChildren(t *testing.T) {
	f, root := newTestField(t, 1, 0)
	var extra []core.ID
	for i := 0; i < 5; i++ {
		r := f.AddRoot(0)
		f.graph.link(root, r)
		extra = append(extra, r)
	}

	children, err := f.IncreaseSpaceDensity(root)
	require.NoError(t, err)
	require.Len(t, children, 2)

	for i, m := range extra {
		owner := children[i%2]
		other := children[(i+1)%2]
		assert.True(t, f.graph.adjacent(owner, m), "neighbor %d goes to child %d", i, i%2)
		assert.False(t, f.graph.adjacent(other, m))
	}
}

func TestDivideEvenlySplit(t *testing.T) {
	opts := DefaultOptions[int]()
	opts.Split = DivideEvenly[int]
	opts.DisableMetrics = true
	f, root, err := NewWithOptions(2, 9, opts)
	require.NoError(t, err)

	children, err := f.IncreaseSpaceDensity(root)
	require.NoError(t, err)
	for _, c := range children {
		st, _ := f.State(c)
		assert.Equal(t, 3, st)
	}
	grand, err := f.IncreaseSpaceDensity(children[0])
	require.NoError(t, err)
	st, _ := f.State(grand[2])
	assert.Equal(t, 1, st)

	total, err := f.AggregateState(root, Sum[int])
	require.NoError(t, err)
	assert.Equal(t, 9, total)
}

func TestIncreaseSubtreeDensity(t *testing.T) {
	f, root := newTestField(t, 2, 0)
	children, err := f.IncreaseSpaceDensity(root)
	require.NoError(t, err)
	_, err = f.IncreaseSpaceDensity(children[0])
	require.NoError(t, err)
	leavesBefore := len(f.Leaves()) // 5

	added, err := f.IncreaseSubtreeDensity(root)
	require.NoError(t, err)
	assert.Len(t, added, leavesBefore*3)
	assert.Len(t, f.Leaves(), leavesBefore*3)
	require.NoError(t, f.CheckConsistency())

	// a leaf target behaves like IncreaseSpaceDensity
	leaf := f.Leaves()[0]
	added, err = f.IncreaseSubtreeDensity(leaf)
	require.NoError(t, err)
	assert.Len(t, added, 3)

	_, err = f.IncreaseSubtreeDensity(core.ID(9999))
	require.ErrorIs(t, err, ErrNotFound)
}
