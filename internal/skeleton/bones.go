package skeleton

import (
	"errors"
	"fmt"

	"tension-tools/internal/bmd"
	"tension-tools/internal/mathutil"
)

var ErrNoAction = errors.New("skeleton: action out of range")

// WorldMatrices computes the world transform for each bone at the given
// action and key. Frames past the end of the clip clamp to its last key.
// Bones without keys for the action keep the identity local transform.
// Returns a slice of 4×4 matrices indexed by bone index.
func WorldMatrices(bones []bmd.Bone, action, frame int) []mathutil.Mat4 {
	worlds := make([]mathutil.Mat4, len(bones))
	for i := range worlds {
		worlds[i] = mathutil.Mat4Identity()
	}

	for i, bone := range bones {
		if bone.IsDummy {
			continue
		}
		local := mathutil.Mat4Identity()
		if key, ok := keyAt(bone, action, frame); ok {
			rot := mathutil.EulerToQuat(float64(key.Rotation[0]), float64(key.Rotation[1]), float64(key.Rotation[2])).Mat3()
			local = mathutil.Affine(rot, mathutil.V3(key.Position))
		}

		// Parents always precede children in BMD bone order
		if bone.Parent >= 0 && bone.Parent < i {
			worlds[i] = mathutil.Mat4Mul(worlds[bone.Parent], local)
		} else {
			worlds[i] = local
		}
	}

	return worlds
}

func keyAt(b bmd.Bone, action, frame int) (bmd.Key, bool) {
	if action < 0 || action >= len(b.Frames) || len(b.Frames[action]) == 0 {
		return bmd.Key{}, false
	}
	keys := b.Frames[action]
	if frame < 0 {
		frame = 0
	}
	if frame >= len(keys) {
		frame = len(keys) - 1
	}
	return keys[frame], true
}

// Pose returns skinned positions for every mesh of the model at the given
// action and key. Rigid skinning: 1 bone per vertex, weight = 1.0.
// The model's rest vertices are never modified.
func Pose(m *bmd.Model, action, frame int) ([][][3]float32, error) {
	if len(m.Bones) > 0 && len(m.Actions) > 0 && (action < 0 || action >= len(m.Actions)) {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoAction, action, len(m.Actions))
	}

	worlds := WorldMatrices(m.Bones, action, frame)
	out := make([][][3]float32, len(m.Meshes))
	for mi := range m.Meshes {
		out[mi] = PoseMesh(&m.Meshes[mi], worlds)
	}
	return out, nil
}

// PoseMesh transforms a single mesh by precomputed bone world matrices.
// Vertices bound to a missing bone keep their stored position.
func PoseMesh(mesh *bmd.Mesh, worlds []mathutil.Mat4) [][3]float32 {
	pos := make([][3]float32, len(mesh.Verts))
	for vi, v := range mesh.Verts {
		boneIdx := -1
		if vi < len(mesh.Nodes) {
			boneIdx = int(mesh.Nodes[vi])
		}
		if boneIdx < 0 || boneIdx >= len(worlds) {
			pos[vi] = v
			continue
		}
		pos[vi] = worlds[boneIdx].MulPoint(mathutil.V3(v)).Float32()
	}
	return pos
}
