package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerators(t *testing.T) {
	tests := []struct {
		m         *Mesh
		vertices  int
		triangles int
	}{
		{Triangle(), 3, 1},
		{Quad(), 4, 2},
		{Grid(4, 3), 20, 24},
		{Fan(8), 9, 8},
		{Fan(1), 4, 3},
		{Tetrahedron(), 4, 4},
		{Cube(), 8, 12},
		{Grid(0, 5), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.m.Name, func(t *testing.T) {
			assert.Equal(t, tt.vertices, tt.m.VertexCount())
			assert.Equal(t, tt.triangles, tt.m.TriangleCount())
			for _, idx := range tt.m.Triangles {
				assert.GreaterOrEqual(t, idx, int32(0))
				assert.Less(t, int(idx), tt.m.VertexCount())
			}
		})
	}
	assert.Equal(t, 4*4+3*5+12, GridEdges(4, 3))
}

func TestHash(t *testing.T) {
	a, b := Grid(3, 3), Grid(3, 3)
	assert.Equal(t, a.Hash(), b.Hash())

	b.Name = "renamed"
	assert.Equal(t, a.Hash(), b.Hash(), "name is not content")

	b.Positions[4][2] = 0.5
	assert.NotEqual(t, a.Hash(), b.Hash())

	c := Grid(3, 3)
	c.Triangles[0], c.Triangles[1] = c.Triangles[1], c.Triangles[0]
	assert.NotEqual(t, a.Hash(), c.Hash())

	assert.NotEqual(t, (&Mesh{}).Hash(), (&Mesh{Triangles: []int32{0}}).Hash())
}

func TestBounds(t *testing.T) {
	lo, hi := Cube().Bounds()
	assert.Equal(t, [3]float32{0, 0, 0}, lo)
	assert.Equal(t, [3]float32{1, 1, 1}, hi)

	lo, hi = (&Mesh{}).Bounds()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}
