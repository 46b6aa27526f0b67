package raster

import "image"

// SampleTexture filters tex bilinearly at (u, v), wrapping both
// coordinates into [0, 1). An empty texture samples as transparent black.
func SampleTexture(tex *image.NRGBA, u, v float64) [4]uint8 {
	var out [4]uint8
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	if w == 0 || h == 0 {
		return out
	}

	fx := wrap(u) * float64(w-1)
	fy := wrap(v) * float64(h-1)
	x0, y0 := int(fx), int(fy)
	x1, y1 := (x0+1)%w, (y0+1)%h
	dx, dy := fx-float64(x0), fy-float64(y0)

	o := tex.Rect.Min
	taps := [4]struct {
		off    int
		weight float64
	}{
		{tex.PixOffset(o.X+x0, o.Y+y0), (1 - dx) * (1 - dy)},
		{tex.PixOffset(o.X+x1, o.Y+y0), dx * (1 - dy)},
		{tex.PixOffset(o.X+x0, o.Y+y1), (1 - dx) * dy},
		{tex.PixOffset(o.X+x1, o.Y+y1), dx * dy},
	}
	for c := range out {
		var sum float64
		for _, tap := range taps {
			sum += float64(tex.Pix[tap.off+c]) * tap.weight
		}
		out[c] = uint8(sum + 0.5)
	}
	return out
}

func wrap(t float64) float64 {
	t -= float64(int(t))
	if t < 0 {
		t++
	}
	return t
}
