package mathutil

import "math"

var (
	// ModelFlip converts Z-up model space to Y-up view space: Rx(-90°)
	ModelFlip = RotX(math.Pi / -2)

	// MirrorX converts left-handed to right-handed: diag(-1, 1, 1)
	MirrorX = Mat3Diag(-1, 1, 1)

	// DefaultView looks slightly down and to the side of the model.
	// MIRROR_X @ Rx(-15°) @ Ry(12°) @ MODEL_FLIP
	DefaultView = OrbitView(12, -15)
)

// OrbitView returns a view rotation that turns the model by yaw degrees
// around its up axis, then tilts it by pitch degrees.
func OrbitView(yawDeg, pitchDeg float64) Mat3 {
	return Mat3Mul(Mat3Mul(Mat3Mul(MirrorX, RotX(Deg2Rad(pitchDeg))), RotY(Deg2Rad(yawDeg))), ModelFlip)
}
