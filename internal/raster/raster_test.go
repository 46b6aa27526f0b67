package raster

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tension-tools/internal/bmd"
	"tension-tools/internal/mathutil"
	"tension-tools/internal/mesh"
	"tension-tools/internal/tension"
)

func quadMesh(colors [][3]uint8) Mesh {
	q := mesh.Quad()
	return Mesh{Positions: q.Positions, Triangles: q.Triangles, Surface: Surface{Colors: colors, Base: DefaultBase}}
}

// faceOn looks straight down the model's Z axis.
var faceOn = mathutil.Mat3Diag(1, 1, 1)

func TestRenderCoversQuad(t *testing.T) {
	img := Render([]Mesh{quadMesh(nil)}, Options{Size: 64, Supersample: 2, View: faceOn})
	require.Equal(t, image.Rect(0, 0, 128, 128), img.Bounds())

	center := img.NRGBAAt(64, 64)
	assert.Equal(t, uint8(255), center.A)
	corner := img.NRGBAAt(0, 0)
	assert.Equal(t, uint8(0), corner.A, "margin stays transparent")
}

func TestRenderVertexColors(t *testing.T) {
	red := [3]uint8{255, 0, 0}
	img := Render([]Mesh{quadMesh([][3]uint8{red, red, red, red})}, Options{Size: 64, Supersample: 1, View: faceOn})
	c := img.NRGBAAt(32, 32)
	assert.Equal(t, uint8(255), c.A)
	assert.Greater(t, c.R, c.G)
	assert.Greater(t, c.R, c.B)
}

func TestRenderEmpty(t *testing.T) {
	img := Render(nil, Options{Size: 8})
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
	fb := NewFrameBuffer(8, 8)
	assert.Zero(t, fb.Covered())
}

func TestRasterizeSkipsBadIndices(t *testing.T) {
	fb := NewFrameBuffer(16, 16)
	lc := DefaultLightConfig()
	px := []float64{1, 14, 1}
	py := []float64{1, 1, 14}
	pz := []float64{0, 0, 0}
	s := &Surface{Base: DefaultBase}

	RasterizeTriangle(fb, px, py, pz, [3]int{0, 1, 7}, [3]int{-1, -1, -1}, s, &lc)
	assert.Zero(t, fb.Covered())

	// zero-area face
	RasterizeTriangle(fb, px, py, pz, [3]int{0, 0, 1}, [3]int{-1, -1, -1}, s, &lc)
	assert.Zero(t, fb.Covered())
}

func TestRasterizeTexture(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(tex.Pix); i += 4 {
		tex.Pix[i], tex.Pix[i+1], tex.Pix[i+2], tex.Pix[i+3] = 0, 255, 0, 255
	}
	fb := NewFrameBuffer(16, 16)
	lc := DefaultLightConfig()
	s := &Surface{UVs: [][2]float32{{0, 0}, {1, 0}, {0, 1}}, Texture: tex}
	// tilted so the face normal is not parallel to the view axis
	RasterizeTriangle(fb, []float64{1, 14, 1}, []float64{1, 1, 14}, []float64{0, 1, 2}, [3]int{0, 1, 2}, [3]int{0, 1, 2}, s, &lc)
	require.NotZero(t, fb.Covered())

	i := (4*16 + 4) * 4
	assert.Greater(t, fb.Color[i+1], fb.Color[i])
}

func TestTensionColors(t *testing.T) {
	samples := []tension.Sample{
		{Ratio: 1},
		{Ratio: 0.5, Squash: 1},
		{Ratio: 2, Stretch: 1},
	}

	both := TensionColors(samples, ModeBoth)
	assert.Equal(t, [][3]uint8{NeutralColor, SquashColor, StretchColor}, both)

	sq := TensionColors(samples, ModeSquash)
	assert.Equal(t, [][3]uint8{NeutralColor, SquashColor, NeutralColor}, sq)

	st := TensionColors(samples, ModeStretch)
	assert.Equal(t, [][3]uint8{NeutralColor, NeutralColor, StretchColor}, st)

	assert.Nil(t, TensionColors(samples, ModeOff))
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeBoth, ModeSquash, ModeStretch, ModeOff} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("heat")
	assert.Error(t, err)
}

type fixedResolver struct{ img *image.NRGBA }

func (r fixedResolver) Resolve(string) *image.NRGBA { return r.img }

func TestModelMeshes(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	m := &bmd.Model{Meshes: []bmd.Mesh{
		{
			Verts: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			UVs:   [][2]float32{{0, 0}},
			Tris:  []bmd.Triangle{{Polygon: 3, VI: [4]int16{0, 1, 2}}},
		},
		{
			Verts: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Tris:  []bmd.Triangle{{Polygon: 3, VI: [4]int16{0, 1, 2}}},
		},
	}}
	posed := [][][3]float32{{{5, 5, 5}, {6, 5, 5}, {5, 6, 5}}}
	colors := [][][3]uint8{nil, {{1, 2, 3}, {1, 2, 3}, {1, 2, 3}}}

	out := ModelMeshes(m, posed, colors, fixedResolver{tex})
	require.Len(t, out, 2)
	assert.Equal(t, posed[0], out[0].Positions)
	assert.Same(t, tex, out[0].Surface.Texture)
	assert.Equal(t, m.Meshes[1].Verts, out[1].Positions)
	assert.Nil(t, out[1].Surface.Texture)
	assert.Len(t, out[1].Surface.Colors, 3)
	assert.Equal(t, []int32{0, 0, 0}, out[0].UVIndex)
}

func TestSampleTexture(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	copy(tex.Pix, []uint8{0, 0, 0, 255, 200, 100, 50, 255})

	assert.Equal(t, [4]uint8{0, 0, 0, 255}, SampleTexture(tex, 0, 0))
	assert.Equal(t, [4]uint8{100, 50, 25, 255}, SampleTexture(tex, 0.5, 0))
	assert.Equal(t, SampleTexture(tex, 0.25, 0), SampleTexture(tex, 1.25, 0))
	assert.Equal(t, SampleTexture(tex, 0.75, 0), SampleTexture(tex, -0.25, 0))
	assert.Equal(t, [4]uint8{}, SampleTexture(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 0.5, 0.5))
}

func TestShadeIsDoubleSided(t *testing.T) {
	lc := DefaultLightConfig()
	up := mathutil.Vec3{0, 0, 1}
	down := mathutil.Vec3{0, 0, -1}
	assert.Greater(t, lc.Shade(up), lc.Ambient)
	assert.InDelta(t, lc.Shade(up)-lc.Exposure*math.Pow(max(up.Dot(lc.Half), 0), lc.Shine)*lc.Specular,
		lc.Shade(down)-lc.Exposure*math.Pow(max(down.Dot(lc.Half), 0), lc.Shine)*lc.Specular, 1e-9)
	assert.Equal(t, uint8(0), encode(0))
	assert.Equal(t, uint8(255), encode(100))
}
