package tension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tension-tools/internal/edges"
	"tension-tools/internal/mesh"
)

func scaled(pos [][3]float32, s float32) [][3]float32 {
	out := make([][3]float32, len(pos))
	for i, p := range pos {
		out[i] = [3]float32{p[0] * s, p[1] * s, p[2] * s}
	}
	return out
}

func setup(t *testing.T, m *mesh.Mesh) (*edges.Table, []edges.Delta) {
	t.Helper()
	tab, err := edges.BuildMesh(m, edges.Options{Strategy: edges.Fixed})
	require.NoError(t, err)
	d, err := edges.Deltas(m.Positions, tab)
	require.NoError(t, err)
	return tab, d
}

var unit = [3]float32{1, 1, 1}

func TestEvaluate(t *testing.T) {
	m := mesh.Grid(3, 3)
	tab, rest := setup(t, m)

	tests := []struct {
		name        string
		factor      float32
		stretch     Property
		wantRatio   float32
		wantSquash  float32
		wantStretch float32
	}{
		{"rest", 1, DefaultProperty(), 1, 0, 0},
		{"stretched", 1.5, DefaultProperty(), 1.5, 0, 0.5},
		{"stretch limited", 3, Property{Intensity: 1, Limit: 0.25, Power: 1}, 3, 0, 0.25},
		{"stretch squared", 1.5, Property{Intensity: 2, Limit: 1, Power: 2}, 1.5, 0, 1},
		{"squashed", 0.5, DefaultProperty(), 0.5, 0.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tab, rest, scaled(m.Positions, tt.factor), DefaultProperty(), tt.stretch, unit)
			require.NoError(t, err)
			require.Len(t, got, m.VertexCount())
			for _, s := range got {
				assert.InDelta(t, tt.wantRatio, s.Ratio, 1e-5)
				assert.InDelta(t, tt.wantSquash, s.Squash, 1e-5)
				assert.InDelta(t, tt.wantStretch, s.Stretch, 1e-5)
			}
		})
	}
}

func TestEvaluateScale(t *testing.T) {
	m := mesh.Cube()
	tab, rest := setup(t, m)

	got, err := Evaluate(tab, rest, scaled(m.Positions, 2), DefaultProperty(), DefaultProperty(), [3]float32{2, 2, 2})
	require.NoError(t, err)
	sq, st := Peak(got)
	assert.InDelta(t, 0, sq, 1e-5)
	assert.InDelta(t, 0, st, 1e-5)
}

func TestEvaluateIsolatedAndDegenerate(t *testing.T) {
	pos := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {9, 9, 9}}
	tab, err := edges.Build(len(pos), []int32{0, 0, 1, 0, 1, 2}, edges.Options{})
	require.NoError(t, err)
	rest, err := edges.Deltas(pos, tab)
	require.NoError(t, err)

	got, err := Evaluate(tab, rest, pos, DefaultProperty(), DefaultProperty(), unit)
	require.NoError(t, err)
	// the self-edge on vertex 0 has zero rest length and is ignored
	assert.Equal(t, Sample{Ratio: 1}, got[0])
	assert.Equal(t, Sample{Ratio: 1}, got[3])
}

func TestEvaluateErrors(t *testing.T) {
	m := mesh.Quad()
	tab, rest := setup(t, m)

	_, err := Evaluate(tab, rest, m.Positions[:3], DefaultProperty(), DefaultProperty(), unit)
	assert.ErrorIs(t, err, edges.ErrPositionCount)

	_, err = Evaluate(tab, rest[:1], m.Positions, DefaultProperty(), DefaultProperty(), unit)
	assert.ErrorIs(t, err, ErrDeltaCount)
}

func TestPropertyClamp(t *testing.T) {
	var p Property
	p.SetIntensity(-3)
	p.SetLimit(7)
	p.SetPower(0)
	assert.Equal(t, Property{Intensity: 0, Limit: 1, Power: MinPower}, p)

	p.SetLimit(-1)
	assert.Equal(t, float32(0), p.Limit)

	c := Property{Intensity: 2, Limit: 0.5, Power: -1}.Clamped()
	assert.Equal(t, Property{Intensity: 2, Limit: 0.5, Power: MinPower}, c)
}

func TestResponse(t *testing.T) {
	p := DefaultProperty()
	assert.Zero(t, p.Response(0))
	assert.Zero(t, p.Response(-1))
	assert.InDelta(t, 0.3, p.Response(0.3), 1e-6)
	assert.Equal(t, float32(1), p.Response(5))
}
