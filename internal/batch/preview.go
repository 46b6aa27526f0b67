package batch

import (
	"fmt"
	"image"

	"tension-tools/internal/bake"
	"tension-tools/internal/bmd"
	"tension-tools/internal/mathutil"
	"tension-tools/internal/postprocess"
	"tension-tools/internal/raster"
	"tension-tools/internal/skeleton"
	"tension-tools/internal/tension"
	"tension-tools/internal/texture"
)

// PreviewConfig controls tension preview rendering.
type PreviewConfig struct {
	Visualizer  raster.Mode
	Squash      tension.Property
	Stretch     tension.Property
	Action      int
	Frame       int
	View        mathutil.Mat3 // zero value means mathutil.DefaultView
	TexResolver texture.Resolver
	RenderSize  int
	Supersample int
}

// Evaluate poses the model at (Action, Frame) and computes tension of
// every sub-mesh against its bake. Returns the posed positions too.
func Evaluate(model *bmd.Model, baked []*bake.Baked, cfg PreviewConfig) ([][]tension.Sample, [][][3]float32, error) {
	if len(baked) != len(model.Meshes) {
		return nil, nil, fmt.Errorf("batch: %d bakes for %d meshes", len(baked), len(model.Meshes))
	}
	posed, err := skeleton.Pose(model, cfg.Action, cfg.Frame)
	if err != nil {
		return nil, nil, err
	}
	samples := make([][]tension.Sample, len(baked))
	for i, b := range baked {
		s, err := tension.Evaluate(b.Table, b.Deltas, posed[i], cfg.Squash, cfg.Stretch, [3]float32{1, 1, 1})
		if err != nil {
			return nil, nil, fmt.Errorf("batch: mesh %d: %w", i, err)
		}
		samples[i] = s
	}
	return samples, posed, nil
}

// RenderPreview renders the posed model tinted by tension, downsampled
// to RenderSize. peaks[i] holds mesh i's largest squash and stretch.
func RenderPreview(model *bmd.Model, baked []*bake.Baked, cfg PreviewConfig) (img *image.NRGBA, peaks [][2]float32, err error) {
	samples, posed, err := Evaluate(model, baked, cfg)
	if err != nil {
		return nil, nil, err
	}

	colors := make([][][3]uint8, len(samples))
	peaks = make([][2]float32, len(samples))
	for i, s := range samples {
		colors[i] = raster.TensionColors(s, cfg.Visualizer)
		peaks[i][0], peaks[i][1] = tension.Peak(s)
	}

	meshes := raster.ModelMeshes(model, posed, colors, cfg.TexResolver)
	img = raster.Render(meshes, raster.Options{Size: cfg.RenderSize, Supersample: cfg.Supersample, View: cfg.View})
	if cfg.Supersample > 1 {
		img = postprocess.Downsample(img, cfg.RenderSize)
	}
	return img, peaks, nil
}

// WritePreview renders and saves a preview as WebP.
func WritePreview(path string, model *bmd.Model, baked []*bake.Baked, cfg PreviewConfig) ([][2]float32, error) {
	img, peaks, err := RenderPreview(model, baked, cfg)
	if err != nil {
		return nil, err
	}
	if err := postprocess.WriteWebP(path, img); err != nil {
		return nil, err
	}
	return peaks, nil
}
