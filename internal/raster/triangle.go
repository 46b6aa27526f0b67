package raster

import (
	"image"
	"math"

	"tension-tools/internal/mathutil"
)

// Surface describes how a mesh's fragments are colored. Per-vertex Colors
// win over Texture; Base is used when neither applies.
type Surface struct {
	Colors  [][3]uint8 // sRGB, indexed like the mesh positions
	UVs     [][2]float32
	Texture *image.NRGBA
	Base    [3]uint8
}

// DefaultBase is the untextured surface color.
var DefaultBase = [3]uint8{160, 160, 170}

// RasterizeTriangle rasterizes a single triangle with a z-buffer, sRGB color
// space, flat lighting and ACES tone mapping. vi indexes the projected
// vertices, ti the surface UVs.
//
// This is the HOT PATH: no allocation in the pixel loop.
func RasterizeTriangle(
	fb *FrameBuffer,
	px, py, pz []float64,
	vi, ti [3]int,
	s *Surface,
	lc *LightConfig,
) {
	nv := len(px)
	for _, i := range vi {
		if i < 0 || i >= nv {
			return
		}
	}

	x0, y0, z0 := px[vi[0]], py[vi[0]], pz[vi[0]]
	x1, y1, z1 := px[vi[1]], py[vi[1]], pz[vi[1]]
	x2, y2, z2 := px[vi[2]], py[vi[2]], pz[vi[2]]

	// Linear corner colors, or UVs for texturing
	var lin [3][3]float64
	hasColor := len(s.Colors) == nv
	if hasColor {
		for k, i := range vi {
			c := s.Colors[i]
			lin[k] = [3]float64{toLinear[c[0]], toLinear[c[1]], toLinear[c[2]]}
		}
	}
	hasUV := !hasColor && s.Texture != nil
	var uv [3][2]float64
	if hasUV {
		for k, i := range ti {
			if i < 0 || i >= len(s.UVs) {
				hasUV = false
				break
			}
			uv[k] = [2]float64{float64(s.UVs[i][0]), float64(s.UVs[i][1])}
		}
	}
	base := [3]float64{toLinear[s.Base[0]], toLinear[s.Base[1]], toLinear[s.Base[2]]}

	// Face normal for flat shading
	e1 := mathutil.Vec3{x1 - x0, y1 - y0, z1 - z0}
	e2 := mathutil.Vec3{x2 - x0, y2 - y0, z2 - z0}
	n := mathutil.Vec3{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	if n.Len() < 1e-8 {
		return
	}
	shade := lc.Shade(n.Normalize())

	// Bounding box
	minX := max(int(math.Min(math.Min(x0, x1), x2)), 0)
	maxX := min(int(math.Max(math.Max(x0, x1), x2))+1, fb.Width-1)
	minY := max(int(math.Min(math.Min(y0, y1), y2)), 0)
	maxY := min(int(math.Max(math.Max(y0, y1), y2))+1, fb.Height-1)
	if minX >= maxX || minY >= maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			var lr, lg, lb float64
			var ca uint8 = 255
			switch {
			case hasColor:
				lr = w0*lin[0][0] + w1*lin[1][0] + w2*lin[2][0]
				lg = w0*lin[0][1] + w1*lin[1][1] + w2*lin[2][1]
				lb = w0*lin[0][2] + w1*lin[1][2] + w2*lin[2][2]
			case hasUV:
				u := w0*uv[0][0] + w1*uv[1][0] + w2*uv[2][0]
				v := w0*uv[0][1] + w1*uv[1][1] + w2*uv[2][1]
				texel := SampleTexture(s.Texture, u, v)
				lr, lg, lb, ca = toLinear[texel[0]], toLinear[texel[1]], toLinear[texel[2]], texel[3]
			default:
				lr, lg, lb = base[0], base[1], base[2]
			}

			// Skip transparent texels
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = encode(lr * shade)
			fb.Color[pxIdx+1] = encode(lg * shade)
			fb.Color[pxIdx+2] = encode(lb * shade)
			fb.Color[pxIdx+3] = ca
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
