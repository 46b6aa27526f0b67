package skeleton

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tension-tools/internal/bmd"
)

func twoBoneModel() *bmd.Model {
	return &bmd.Model{
		Meshes: []bmd.Mesh{{
			Verts: [][3]float32{{1, 0, 0}, {1, 0, 0}, {5, 5, 5}},
			Nodes: []int16{0, 1, 9},
		}},
		Bones: []bmd.Bone{
			{Name: "root", Parent: -1, Frames: [][]bmd.Key{{
				{Position: [3]float32{0, 0, 0}},
				{Position: [3]float32{0, 0, 2}},
			}}},
			{Name: "arm", Parent: 0, Frames: [][]bmd.Key{{
				{Position: [3]float32{1, 0, 0}},
				{Position: [3]float32{1, 0, 0}, Rotation: [3]float32{0, 0, math.Pi / 2}},
			}}},
		},
		Actions: []bmd.Action{{NumKeys: 2}},
	}
}

func assertPos(t *testing.T, want, got [3]float32) {
	t.Helper()
	for k := 0; k < 3; k++ {
		assert.InDelta(t, want[k], got[k], 1e-5)
	}
}

func TestPoseFrames(t *testing.T) {
	m := twoBoneModel()

	rest, err := Pose(m, 0, 0)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assertPos(t, [3]float32{1, 0, 0}, rest[0][0])
	assertPos(t, [3]float32{2, 0, 0}, rest[0][1])
	assertPos(t, [3]float32{5, 5, 5}, rest[0][2])

	posed, err := Pose(m, 0, 1)
	require.NoError(t, err)
	assertPos(t, [3]float32{1, 0, 2}, posed[0][0])
	// arm rotated 90° around Z, then offset by parent chain
	assertPos(t, [3]float32{1, 1, 2}, posed[0][1])

	// past the last key clamps
	clamped, err := Pose(m, 0, 99)
	require.NoError(t, err)
	assert.Equal(t, posed, clamped)
}

func TestPoseLeavesRestUntouched(t *testing.T) {
	m := twoBoneModel()
	before := append([][3]float32(nil), m.Meshes[0].Verts...)
	_, err := Pose(m, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, before, m.Meshes[0].Verts)
}

func TestPoseBadAction(t *testing.T) {
	_, err := Pose(twoBoneModel(), 3, 0)
	assert.ErrorIs(t, err, ErrNoAction)
}

func TestPoseNoSkeleton(t *testing.T) {
	m := &bmd.Model{Meshes: []bmd.Mesh{{Verts: [][3]float32{{1, 2, 3}}, Nodes: []int16{0}}}}
	out, err := Pose(m, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, [3]float32{1, 2, 3}, out[0][0])
}
