package raster

import (
	"fmt"
	"strings"

	"tension-tools/internal/tension"
)

// Mode selects which tension channel tints the preview.
type Mode int

const (
	ModeBoth Mode = iota
	ModeSquash
	ModeStretch
	// ModeOff renders the plain, textured model.
	ModeOff
)

func (m Mode) String() string {
	switch m {
	case ModeBoth:
		return "both"
	case ModeSquash:
		return "squash"
	case ModeStretch:
		return "stretch"
	case ModeOff:
		return "off"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "both", "squash", "stretch" and "off".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "both", "":
		return ModeBoth, nil
	case "squash":
		return ModeSquash, nil
	case "stretch":
		return ModeStretch, nil
	case "off", "none":
		return ModeOff, nil
	}
	return 0, fmt.Errorf("raster: unknown visualizer mode %q", s)
}

var (
	SquashColor  = [3]uint8{40, 90, 255}
	StretchColor = [3]uint8{255, 50, 40}
	NeutralColor = [3]uint8{200, 200, 205}
)

// TensionColors maps samples to per-vertex colors: neutral at rest,
// blending toward SquashColor and StretchColor as tension rises. Returns
// nil for ModeOff so the surface falls back to its texture.
func TensionColors(samples []tension.Sample, mode Mode) [][3]uint8 {
	if mode == ModeOff {
		return nil
	}
	out := make([][3]uint8, len(samples))
	for i, s := range samples {
		c := NeutralColor
		if mode != ModeStretch {
			c = lerp(c, SquashColor, s.Squash)
		}
		if mode != ModeSquash {
			c = lerp(c, StretchColor, s.Stretch)
		}
		out[i] = c
	}
	return out
}

func lerp(a, b [3]uint8, t float32) [3]uint8 {
	if t <= 0 {
		return a
	}
	if t > 1 {
		t = 1
	}
	var c [3]uint8
	for k := range c {
		c[k] = uint8(float32(a[k]) + (float32(b[k])-float32(a[k]))*t + 0.5)
	}
	return c
}
