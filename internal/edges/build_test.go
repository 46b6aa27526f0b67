package edges

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tension-tools/internal/mesh"
)

var strategies = []Strategy{HashSet, Fixed}

func neighborSet(t *Table, v int) []int32 {
	return t.Canonical().Neighbors(v)
}

func TestBuildSingleTriangle(t *testing.T) {
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			tab, err := Build(3, []int32{0, 1, 2}, Options{Strategy: s})
			require.NoError(t, err)

			assert.Equal(t, []int32{2, 4, 6}, tab.Offsets())
			assert.Equal(t, 6, tab.EdgeCount())
			assert.Equal(t, 9, tab.Len())
			assert.ElementsMatch(t, []int32{1, 2}, tab.Neighbors(0))
			assert.ElementsMatch(t, []int32{0, 2}, tab.Neighbors(1))
			assert.ElementsMatch(t, []int32{0, 1}, tab.Neighbors(2))
		})
	}
}

func TestBuildFixedLayoutIsDiscoveryOrder(t *testing.T) {
	tab, err := Build(3, []int32{0, 1, 2}, Options{Strategy: Fixed})
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 4, 6, 1, 2, 0, 2, 0, 1}, tab.Raw())

	quad := mesh.Quad()
	tab, err = BuildMesh(quad, Options{Strategy: Fixed})
	require.NoError(t, err)
	assert.Equal(t, []int32{
		2, 5, 8, 10,
		1, 2,
		0, 2, 3,
		0, 1, 3,
		1, 2,
	}, tab.Raw())
}

func TestBuildSharedEdge(t *testing.T) {
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			tab, err := BuildMesh(mesh.Quad(), Options{Strategy: s})
			require.NoError(t, err)

			assert.Equal(t, 10, tab.EdgeCount())
			assert.Equal(t, 2, tab.Degree(0))
			assert.Equal(t, 3, tab.Degree(1))
			assert.Equal(t, 3, tab.Degree(2))
			assert.Equal(t, 2, tab.Degree(3))
			assert.ElementsMatch(t, []int32{0, 2, 3}, tab.Neighbors(1))
			assert.ElementsMatch(t, []int32{0, 1, 3}, tab.Neighbors(2))
			assert.Equal(t, 5, tab.UndirectedEdges())
		})
	}
}

func TestBuildCapacityExceeded(t *testing.T) {
	fan := mesh.Fan(17)

	tab, err := BuildMesh(fan, Options{Strategy: Fixed})
	require.Error(t, err)
	assert.Nil(t, tab)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))

	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 0, ce.Vertex)
	assert.Equal(t, DefaultMaxDegree, ce.Capacity)

	tab, err = BuildMesh(fan, Options{Strategy: HashSet})
	require.NoError(t, err)
	assert.Equal(t, 17, tab.Degree(0))

	tab, err = BuildMesh(fan, Options{Strategy: Fixed, MaxDegree: 17})
	require.NoError(t, err)
	assert.Equal(t, 17, tab.Degree(0))
}

func TestBuildScratchReusedAfterAbort(t *testing.T) {
	// Fill the hub of a large fan until the build aborts, leaving used
	// slots in the pooled scratch.
	_, err := BuildMesh(mesh.Fan(40), Options{Strategy: Fixed, MaxDegree: 8})
	require.ErrorIs(t, err, ErrCapacityExceeded)

	quad := mesh.Quad()
	tab, err := BuildMesh(quad, Options{Strategy: Fixed, MaxDegree: 8})
	require.NoError(t, err)
	assert.Equal(t, 10, tab.EdgeCount())
	assert.Equal(t, []int32{1, 2}, neighborSet(tab, 0))
	assert.Equal(t, []int32{0, 2, 3}, neighborSet(tab, 1))
	assert.Equal(t, []int32{0, 1, 3}, neighborSet(tab, 2))
	assert.Equal(t, []int32{1, 2}, neighborSet(tab, 3))
	assert.Equal(t, []int32{2, 5, 8, 10}, tab.Offsets())
}

func TestFixedSetsReleaseTwice(t *testing.T) {
	f := newFixedSets(3, 4)
	_, err := f.add(0, 1)
	require.NoError(t, err)
	f.release()
	assert.NotPanics(t, f.release)
	assert.Nil(t, f.scratch)
}

func TestBuildHugeCapacity(t *testing.T) {
	tab, err := Build(3, []int32{0, 1, 2}, Options{Strategy: Fixed, MaxDegree: 1 << 40})
	require.NoError(t, err)
	assert.Equal(t, 6, tab.EdgeCount())

	// The capacity is bounded by the vertex count.
	assert.Equal(t, 4*(3*3+3), ScratchBytes(3, 1<<40))
	assert.Equal(t, 4*(3*2+3), ScratchBytes(3, 2))
}

func TestBuildFullVertexAcceptsDuplicates(t *testing.T) {
	// The last fan triangle only re-inserts neighbors the hub already has.
	tab, err := BuildMesh(mesh.Fan(16), Options{Strategy: Fixed})
	require.NoError(t, err)
	assert.Equal(t, 16, tab.Degree(0))
	assert.Equal(t, 16*4, tab.EdgeCount())
}

func TestBuildDegenerateTriangle(t *testing.T) {
	tris := []int32{0, 0, 1}

	for _, s := range strategies {
		t.Run(s.String()+"/keep", func(t *testing.T) {
			first, err := Build(2, tris, Options{Strategy: s})
			require.NoError(t, err)
			assert.Equal(t, 3, first.EdgeCount())
			assert.Equal(t, []int32{0, 1}, neighborSet(first, 0))
			assert.Equal(t, []int32{0}, neighborSet(first, 1))
			assert.Equal(t, 1, first.SelfEdges())

			again, err := Build(2, tris, Options{Strategy: s})
			require.NoError(t, err)
			assert.NoError(t, Compare(first, again))
		})
		t.Run(s.String()+"/skip", func(t *testing.T) {
			tab, err := Build(2, tris, Options{Strategy: s, Degenerate: DegenerateSkip})
			require.NoError(t, err)
			assert.Equal(t, 0, tab.EdgeCount())
			assert.Equal(t, []int32{0, 0}, tab.Offsets())
		})
		t.Run(s.String()+"/reject", func(t *testing.T) {
			tab, err := Build(2, tris, Options{Strategy: s, Degenerate: DegenerateReject})
			assert.Nil(t, tab)
			var de *DegenerateError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, 0, de.Triangle)
		})
	}

	tab, err := Build(2, tris, Options{Strategy: Fixed})
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 3, 0, 1, 0}, tab.Raw())
}

func TestBuildInvalidInput(t *testing.T) {
	tests := []struct {
		name        string
		vertexCount int
		tris        []int32
		want        error
	}{
		{"negative count", -1, nil, ErrNegativeVertexCount},
		{"partial triangle", 3, []int32{0, 1}, ErrTriangleCount},
		{"index too large", 3, []int32{0, 1, 3}, ErrIndexOutOfRange},
		{"negative index", 3, []int32{0, -1, 2}, ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		for _, s := range strategies {
			t.Run(tt.name+"/"+s.String(), func(t *testing.T) {
				tab, err := Build(tt.vertexCount, tt.tris, Options{Strategy: s})
				assert.Nil(t, tab)
				assert.ErrorIs(t, err, tt.want)
			})
		}
	}

	_, err := Build(3, []int32{0, 1, 2, 2, 1, 9}, Options{})
	var ie *IndexError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 1, ie.Triangle)
	assert.Equal(t, 2, ie.Corner)
	assert.Equal(t, int32(9), ie.Index)
}

func TestBuildEmptyAndIsolated(t *testing.T) {
	tab, err := Build(0, nil, Options{Strategy: Fixed})
	require.NoError(t, err)
	assert.Equal(t, 0, tab.Len())

	tab, err = Build(5, []int32{0, 1, 2}, Options{Strategy: HashSet})
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 4, 6, 6, 6}, tab.Offsets())
	assert.Equal(t, 0, tab.Degree(3))
	assert.Empty(t, tab.Neighbors(4))
}

func TestStrategyEquivalence(t *testing.T) {
	meshes := []*mesh.Mesh{
		mesh.Triangle(), mesh.Quad(), mesh.Grid(12, 7), mesh.Fan(9),
		mesh.Tetrahedron(), mesh.Cube(),
	}
	for _, m := range meshes {
		t.Run(m.Name, func(t *testing.T) {
			a, err := BuildMesh(m, Options{Strategy: HashSet})
			require.NoError(t, err)
			b, err := BuildMesh(m, Options{Strategy: Fixed})
			require.NoError(t, err)

			assert.NoError(t, Compare(a, b))
			assert.Equal(t, a.Offsets(), b.Offsets())
			assert.Equal(t, a.Canonical().Raw(), b.Canonical().Raw())
		})
	}
}

func TestTableProperties(t *testing.T) {
	tests := []struct {
		m          *mesh.Mesh
		undirected int
	}{
		{mesh.Tetrahedron(), 6},
		{mesh.Cube(), 18},
		{mesh.Grid(5, 4), mesh.GridEdges(5, 4)},
		{mesh.Fan(11), 22},
	}
	for _, tt := range tests {
		for _, s := range strategies {
			t.Run(tt.m.Name+"/"+s.String(), func(t *testing.T) {
				tab, err := BuildMesh(tt.m, Options{Strategy: s})
				require.NoError(t, err)
				require.NoError(t, tab.Validate())

				assert.True(t, tab.Symmetric())
				sum := 0
				for v := 0; v < tab.VertexCount(); v++ {
					sum += tab.Degree(v)
				}
				assert.Equal(t, tab.EdgeCount(), sum)
				assert.Equal(t, tt.undirected, tab.UndirectedEdges())
				assert.Equal(t, 2*tt.undirected, tab.EdgeCount())
			})
		}
	}
}

func TestFixedIsDeterministic(t *testing.T) {
	g := mesh.Grid(9, 9)
	first, err := BuildMesh(g, Options{Strategy: Fixed})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := BuildMesh(g, Options{Strategy: Fixed})
		require.NoError(t, err)
		assert.Equal(t, first.Raw(), again.Raw())
	}
}

func TestCanonicalOption(t *testing.T) {
	g := mesh.Grid(6, 3)
	a, err := BuildMesh(g, Options{Strategy: HashSet, Canonical: true})
	require.NoError(t, err)
	b, err := BuildMesh(g, Options{Strategy: Fixed, Canonical: true})
	require.NoError(t, err)
	assert.Equal(t, a.Raw(), b.Raw())
	for v := 0; v < a.VertexCount(); v++ {
		assert.IsNonDecreasing(t, a.Neighbors(v))
	}
}

func TestGridInteriorDegree(t *testing.T) {
	tab, err := BuildMesh(mesh.Grid(4, 4), Options{Strategy: Fixed})
	require.NoError(t, err)
	assert.Equal(t, 6, tab.Degree(2*5+2))
	assert.Equal(t, 6, tab.MaxDegree())
}
