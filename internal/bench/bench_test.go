package bench

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tension-tools/internal/edges"
	"tension-tools/internal/mesh"
)

func TestRunAgrees(t *testing.T) {
	g := mesh.Grid(8, 8)
	r := Run(g, DefaultCases(16), 3)

	assert.Equal(t, 81, r.Vertices)
	assert.Equal(t, 128, r.Triangles)
	assert.True(t, r.Equivalent)
	assert.NoError(t, r.Mismatch)
	require.Len(t, r.Stats, 2)
	for _, s := range r.Stats {
		require.NoError(t, s.Err, s.Case)
		assert.Equal(t, 3, s.Runs)
		assert.Equal(t, 2*mesh.GridEdges(8, 8), s.Edges)
		assert.LessOrEqual(t, s.Min, s.Mean)
		assert.LessOrEqual(t, s.Mean, s.Max)
		assert.Positive(t, s.ResultBytes)
	}
	assert.Zero(t, r.Stats[0].ScratchBytes)
	assert.Equal(t, edges.ScratchBytes(81, 16), r.Stats[1].ScratchBytes)

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	assert.Contains(t, buf.String(), "strategies agree")
	assert.Contains(t, buf.String(), "fixed/16")
}

func TestRunReportsCapacityFailure(t *testing.T) {
	r := Run(mesh.Fan(20), DefaultCases(8), 2)
	require.Len(t, r.Stats, 2)
	assert.NoError(t, r.Stats[0].Err)
	assert.ErrorIs(t, r.Stats[1].Err, edges.ErrCapacityExceeded)
	assert.True(t, r.Equivalent, "failed cases are not compared")

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	assert.Contains(t, buf.String(), "FAILED")
}

func TestRunDegenerateCasesDiffer(t *testing.T) {
	m := &mesh.Mesh{Name: "degenerate", Positions: make([][3]float32, 3), Triangles: []int32{0, 0, 1, 0, 1, 2}}
	r := Run(m, []Case{
		{Name: "keep", Options: edges.Options{}},
		{Name: "skip", Options: edges.Options{Degenerate: edges.DegenerateSkip}},
	}, 1)
	assert.False(t, r.Equivalent)
	var mm *edges.MismatchError
	assert.ErrorAs(t, r.Mismatch, &mm)
}
