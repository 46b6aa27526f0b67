package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got Vec3) {
	t.Helper()
	for k := 0; k < 3; k++ {
		assert.InDelta(t, want[k], got[k], 1e-9)
	}
}

func TestEulerToQuatMatchesAxisRotations(t *testing.T) {
	a := Deg2Rad(30)
	for _, tt := range []struct {
		q Quat
		r Mat3
	}{
		{EulerToQuat(a, 0, 0), RotX(a)},
		{EulerToQuat(0, a, 0), RotY(a)},
	} {
		q := tt.q.Mat3()
		for i := range q {
			assert.InDelta(t, tt.r[i], q[i], 1e-12)
		}
	}
}

func TestRotations(t *testing.T) {
	assertVec(t, Vec3{0, 0, 1}, RotX(math.Pi/2).MulVec3(Vec3{0, 1, 0}))
	assertVec(t, Vec3{1, 0, 0}, RotY(math.Pi/2).MulVec3(Vec3{0, 0, 1}))
	assertVec(t, Vec3{2, -3, 4}, Mat3Mul(Mat3Diag(2, 3, 4), Mat3Diag(1, -1, 1)).MulVec3(Vec3{1, 1, 1}))
}

func TestAffine(t *testing.T) {
	m := Affine(RotX(math.Pi/2), Vec3{1, 2, 3})
	assertVec(t, Vec3{1, 2, 4}, m.MulPoint(Vec3{0, 1, 0}))

	chained := Mat4Mul(Affine(Mat3Diag(1, 1, 1), Vec3{0, 0, 1}), m)
	assertVec(t, Vec3{1, 2, 5}, chained.MulPoint(Vec3{0, 1, 0}))
}

func TestOrbitViewDefault(t *testing.T) {
	assert.Equal(t, DefaultView, OrbitView(12, -15))
	v := DefaultView.MulVec3(Vec3{0, 0, 1})
	assert.InDelta(t, 1.0, v.Len(), 1e-12)
}

func TestVec3(t *testing.T) {
	v := Vec3{3, 4, 0}
	assert.InDelta(t, 5.0, v.Len(), 1e-12)
	assertVec(t, Vec3{0.6, 0.8, 0}, v.Normalize())
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
	assert.Equal(t, [3]float32{3, 4, 0}, V3([3]float32{3, 4, 0}).Float32())
}
