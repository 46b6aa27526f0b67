package raster

import (
	"math"

	"tension-tools/internal/mathutil"
)

const gamma = 2.2

// LightConfig is a key light, a rim light and a hemisphere fill. Faces are
// lit from both sides.
type LightConfig struct {
	Key  mathutil.Vec3 // unit direction
	Rim  mathutil.Vec3 // unit direction
	Half mathutil.Vec3 // Blinn-Phong half-vector of Key and the view axis

	Ambient  float64
	Fill     float64
	KeyGain  float64
	RimGain  float64
	Specular float64
	Shine    float64
	Exposure float64
}

// DefaultLightConfig lights from the upper right with a cool rim from
// behind and a mild specular.
func DefaultLightConfig() LightConfig {
	key := mathutil.Vec3{180, 260, 140}.Normalize()
	view := mathutil.Vec3{0, -110, -400}.Normalize()
	return LightConfig{
		Key:      key,
		Rim:      mathutil.Vec3{-160, 130, -210}.Normalize(),
		Half:     key.Sub(view).Normalize(),
		Ambient:  0.55,
		Fill:     0.50,
		KeyGain:  1.50,
		RimGain:  0.60,
		Specular: 0.45,
		Shine:    12,
		Exposure: 1.05,
	}
}

// Shade returns the exposed light intensity for a unit face normal.
func (lc *LightConfig) Shade(n mathutil.Vec3) float64 {
	fill := ((1-math.Abs(n[1]))*0.5 + 0.5) * lc.Fill
	spec := math.Pow(max(n.Dot(lc.Half), 0), lc.Shine) * lc.Specular
	light := lc.Ambient + fill +
		math.Abs(n.Dot(lc.Key))*lc.KeyGain +
		math.Abs(n.Dot(lc.Rim))*lc.RimGain + spec
	return light * lc.Exposure
}

// toLinear maps an 8-bit sRGB channel to linear light.
var toLinear = func() (t [256]float64) {
	for i := range t {
		t[i] = math.Pow(float64(i)/255, gamma)
	}
	return t
}()

// encode tone maps a linear value with the ACES filmic curve and returns
// it as an 8-bit sRGB channel.
func encode(x float64) uint8 {
	aces := (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
	return clamp255(math.Pow(aces, 1/gamma) * 255)
}
