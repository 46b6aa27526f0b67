package raster

import (
	"image"
	"math"

	"tension-tools/internal/bmd"
	"tension-tools/internal/mathutil"
	"tension-tools/internal/texture"
)

// Mesh is one drawable triangle list.
type Mesh struct {
	Positions [][3]float32
	Triangles []int32 // vertex index triples
	UVIndex   []int32 // optional, parallel to Triangles
	Surface   Surface
}

// Options controls framing. The output is Size×Supersample pixels square;
// callers downsample to Size.
type Options struct {
	Size        int
	Supersample int
	View        mathutil.Mat3
}

func (o Options) renderSize() int {
	ss := max(o.Supersample, 1)
	return max(o.Size, 1) * ss
}

// Render rasterizes meshes with an orthographic camera fitted to their
// combined bounds after the view rotation.
func Render(meshes []Mesh, opts Options) *image.NRGBA {
	renderSize := opts.renderSize()
	fb := NewFrameBuffer(renderSize, renderSize)

	R := opts.View
	if R == (mathutil.Mat3{}) {
		R = mathutil.DefaultView
	}

	// Bounding box of all transformed vertices
	allMin := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	allMax := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	seen := false
	for _, m := range meshes {
		for _, v := range m.Positions {
			tv := R.MulVec3(mathutil.V3(v))
			for k := 0; k < 3; k++ {
				allMin[k] = math.Min(allMin[k], tv[k])
				allMax[k] = math.Max(allMax[k], tv[k])
			}
			seen = true
		}
	}
	if !seen {
		return fb.Image()
	}

	center := allMin.Add(allMax).Scale(0.5)
	span := math.Max(math.Max(allMax[0]-allMin[0], allMax[1]-allMin[1]), 0.001)
	margin := 16 * max(opts.Supersample, 1)
	scale := float64(renderSize-2*margin) / span
	lc := DefaultLightConfig()

	for i := range meshes {
		m := &meshes[i]
		if len(m.Positions) == 0 {
			continue
		}
		px, py, pz := project(m.Positions, R, center, scale, renderSize)
		hasUV := len(m.UVIndex) == len(m.Triangles)
		for t := 0; t+2 < len(m.Triangles); t += 3 {
			vi := [3]int{int(m.Triangles[t]), int(m.Triangles[t+1]), int(m.Triangles[t+2])}
			ti := [3]int{-1, -1, -1}
			if hasUV {
				ti = [3]int{int(m.UVIndex[t]), int(m.UVIndex[t+1]), int(m.UVIndex[t+2])}
			}
			RasterizeTriangle(fb, px, py, pz, vi, ti, &m.Surface, &lc)
		}
	}

	return fb.Image()
}

func project(verts [][3]float32, R mathutil.Mat3, center mathutil.Vec3, scale float64, renderSize int) ([]float64, []float64, []float64) {
	n := len(verts)
	px := make([]float64, n)
	py := make([]float64, n)
	pz := make([]float64, n)
	half := float64(renderSize) / 2
	for i, v := range verts {
		t := R.MulVec3(mathutil.V3(v))
		px[i] = (t[0]-center[0])*scale + half
		py[i] = -(t[1]-center[1])*scale + half
		pz[i] = t[2]
	}
	return px, py, pz
}

// ModelMeshes pairs a model's sub-meshes with posed positions and optional
// per-vertex colors. colors may be nil, or hold nil entries, to fall back to
// the mesh texture resolved through res (which may itself be nil).
func ModelMeshes(m *bmd.Model, posed [][][3]float32, colors [][][3]uint8, res texture.Resolver) []Mesh {
	out := make([]Mesh, 0, len(m.Meshes))
	for i := range m.Meshes {
		src := &m.Meshes[i]
		rm := Mesh{
			Positions: src.Verts,
			Triangles: src.TriangleIndices(),
			UVIndex:   src.UVIndices(),
			Surface:   Surface{UVs: src.UVs, Base: DefaultBase},
		}
		if i < len(posed) {
			rm.Positions = posed[i]
		}
		if i < len(colors) {
			rm.Surface.Colors = colors[i]
		}
		if rm.Surface.Colors == nil && res != nil {
			rm.Surface.Texture = res.Resolve(src.TexPath)
		}
		out = append(out, rm)
	}
	return out
}
