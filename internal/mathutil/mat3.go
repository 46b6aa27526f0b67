package mathutil

import "math"

// Mat3 is a row-major 3×3 matrix.
type Mat3 [9]float64

// Mat3Diag returns the scale matrix diag(x, y, z).
func Mat3Diag(x, y, z float64) Mat3 {
	return Mat3{x, 0, 0, 0, y, 0, 0, 0, z}
}

// RotX rotates by a radians around the X axis.
func RotX(a float64) Mat3 {
	return planeRotation(1, 2, a)
}

// RotY rotates by a radians around the Y axis.
func RotY(a float64) Mat3 {
	return planeRotation(2, 0, a)
}

// planeRotation rotates axis i toward axis j, fixing the third.
func planeRotation(i, j int, a float64) Mat3 {
	m := Mat3Diag(1, 1, 1)
	c, s := math.Cos(a), math.Sin(a)
	m[i*3+i], m[i*3+j] = c, -s
	m[j*3+i], m[j*3+j] = s, c
	return m
}

func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// Mat3Mul returns a·b.
func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for r := 0; r < 3; r++ {
		row := a[r*3 : r*3+3]
		for c := 0; c < 3; c++ {
			m[r*3+c] = row[0]*b[c] + row[1]*b[3+c] + row[2]*b[6+c]
		}
	}
	return m
}

func (m Mat3) MulVec3(v Vec3) Vec3 {
	var out Vec3
	for r := range out {
		out[r] = m[r*3]*v[0] + m[r*3+1]*v[1] + m[r*3+2]*v[2]
	}
	return out
}
