package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/sanonone/qdf/pkg/core"
)

func TestFindPathIdentity(t *testing.T) {
	f, root := newTestField(t, 2, 0)
	p, err := f.FindPath(root, root)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{root}, p)

	_, err = f.IncreaseSubtreeDensity(root)
	require.NoError(t, err)
	for _, leaf := range f.Leaves() {
		p, err := f.FindPath(leaf, leaf)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{leaf}, p)
	}
}

func TestFindPathAcrossLevels(t *testing.T) {
	f, root := newTestField(t, 2, 0)
	s, err := f.IncreaseSpaceDensity(root)
	require.NoError(t, err)
	g, err := f.IncreaseSpaceDensity(s[0])
	require.NoError(t, err)

	tests := []struct {
		name     string
		src, dst core.ID
		want     []core.ID
	}{
		{"grandchild to uncle", g[0], s[2], []core.ID{g[0], g[1], s[2]}},
		{"direct rehomed edge", g[0], s[1], []core.ID{g[0], s[1]}},
		{"siblings", g[2], g[0], []core.ID{g[2], g[0]}},
		{"inner child to uncle", g[2], s[1], []core.ID{g[2], g[0], s[1]}},
		{"uncle to grandchild", s[2], g[0], []core.ID{s[2], s[1], g[0]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.FindPath(tt.src, tt.dst)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindPathInvalidEndpoints(t *testing.T) {
	f, root := newTestField(t, 2, 0)
	children, err := f.IncreaseSpaceDensity(root)
	require.NoError(t, err)

	_, err = f.FindPath(root, children[0])
	require.ErrorIs(t, err, ErrInvalidEndpoint)
	_, err = f.FindPath(children[0], root)
	require.ErrorIs(t, err, ErrInvalidEndpoint)

	_, err = f.FindPath(children[0], core.ID(77))
	require.ErrorIs(t, err, ErrInvalidEndpoint)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.FindPath(root, root)
	require.ErrorIs(t, err, ErrInvalidEndpoint)
}

func TestFindPathIndependentRoots(t *testing.T) {
	f, a := newTestField(t, 2, 0)
	b := f.AddRoot(0)

	_, err := f.FindPath(a, b)
	require.ErrorIs(t, err, ErrPathNotFound)

	as, err := f.IncreaseSpaceDensity(a)
	require.NoError(t, err)
	bs, err := f.IncreaseSpaceDensity(b)
	require.NoError(t, err)

	_, err = f.FindPath(as[0], bs[2])
	require.ErrorIs(t, err, ErrPathNotFound)
	require.NoError(t, f.CheckConsistency())
}

func TestFindPathMatchesGonumHopCount(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		rng := rand.New(rand.NewPCG(uint64(dim), 99))
		f, _ := newTestField(t, dim, 0)
		for step := 0; step < 25; step++ {
			leaves := f.Leaves()
			_, err := f.IncreaseSpaceDensity(leaves[rng.IntN(len(leaves))])
			require.NoError(t, err)
		}

		g := f.LeafGraph()
		leaves := f.Leaves()
		for i := 0; i < 30; i++ {
			src := leaves[rng.IntN(len(leaves))]
			dst := leaves[rng.IntN(len(leaves))]

			got, err := f.FindPath(src, dst)
			require.NoError(t, err)
			assert.Equal(t, src, got[0])
			assert.Equal(t, dst, got[len(got)-1])
			for k := 1; k < len(got); k++ {
				assert.True(t, f.graph.adjacent(got[k-1], got[k]), "path step %s-%s is not an edge", got[k-1], got[k])
			}

			shortest := path.DijkstraFrom(simple.Node(int64(src)), g)
			want := shortest.WeightTo(int64(dst))
			assert.Equal(t, int(want), len(got)-1, "dimension %d: %s -> %s", dim, src, dst)
		}
	}
}

func TestFindPathDeterministic(t *testing.T) {
	build := func() (*Field[int], []core.ID) {
		f, root := newTestField(t, 3, 0)
		_, err := f.IncreaseSubtreeDensity(root)
		require.NoError(t, err)
		_, err = f.IncreaseSubtreeDensity(root)
		require.NoError(t, err)
		return f, f.Leaves()
	}
	f1, l1 := build()
	f2, l2 := build()
	require.Equal(t, l1, l2)

	p1, err := f1.FindPath(l1[0], l1[len(l1)-1])
	require.NoError(t, err)
	p2, err := f2.FindPath(l2[0], l2[len(l2)-1])
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}
