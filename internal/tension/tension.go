// Package tension evaluates per-vertex squash and stretch of a deformed mesh
// against the rest-pose edge deltas baked into an edge table.
package tension

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"tension-tools/internal/edges"
)

var ErrDeltaCount = errors.New("tension: rest delta count does not match edge count")

// MinPower keeps the response curve finite.
const MinPower = 0.01

// Property shapes one side of the tension response.
type Property struct {
	Intensity float32 `json:"intensity" toml:"intensity"`
	Limit     float32 `json:"limit" toml:"limit"`
	Power     float32 `json:"power" toml:"power"`
}

// DefaultProperty is a linear response capped at 1.
func DefaultProperty() Property {
	return Property{Intensity: 1, Limit: 1, Power: 1}
}

func (p *Property) SetIntensity(v float32) { p.Intensity = math32.Max(0, v) }

func (p *Property) SetLimit(v float32) { p.Limit = clamp01(v) }

func (p *Property) SetPower(v float32) { p.Power = math32.Max(MinPower, v) }

// Clamped returns p with every field forced into its valid range.
func (p Property) Clamped() Property {
	p.SetIntensity(p.Intensity)
	p.SetLimit(p.Limit)
	p.SetPower(p.Power)
	return p
}

// Response maps a non-negative deviation to a tension value in [0, Limit].
func (p Property) Response(deviation float32) float32 {
	if deviation <= 0 {
		return 0
	}
	return math32.Min(p.Limit, math32.Pow(deviation*p.Intensity, p.Power))
}

// Sample is one vertex's tension.
type Sample struct {
	Ratio   float32 // mean deformed/rest edge length, 1 at rest
	Squash  float32
	Stretch float32
}

// Evaluate computes tension for every vertex of t.
//
// rest holds the rest-pose deltas in edge-slot order, deformed the current
// vertex positions. scale is applied component-wise to the rest deltas, the
// way an object scale would. Vertices without edges, or whose rest edges all
// have zero length, report Ratio 1 and no tension.
func Evaluate(t *edges.Table, rest []edges.Delta, deformed [][3]float32, squash, stretch Property, scale [3]float32) ([]Sample, error) {
	if len(deformed) != t.VertexCount() {
		return nil, fmt.Errorf("tension: %w: %d positions for %d vertices",
			edges.ErrPositionCount, len(deformed), t.VertexCount())
	}
	if len(rest) != t.EdgeCount() {
		return nil, fmt.Errorf("%w: %d deltas for %d edges", ErrDeltaCount, len(rest), t.EdgeCount())
	}
	squash = squash.Clamped()
	stretch = stretch.Clamped()

	out := make([]Sample, t.VertexCount())
	for v := range out {
		lo, hi := t.Range(v)
		neighbors := t.Neighbors(v)

		var sum float32
		n := 0
		for k := lo; k < hi; k++ {
			r := rest[k]
			restLen := edges.Delta{r[0] * scale[0], r[1] * scale[1], r[2] * scale[2]}.Len()
			if restLen == 0 {
				continue
			}
			sum += edges.Sub(deformed[v], deformed[neighbors[k-lo]]).Len() / restLen
			n++
		}

		ratio := float32(1)
		if n > 0 {
			ratio = sum / float32(n)
		}
		out[v] = Sample{
			Ratio:   ratio,
			Squash:  squash.Response(1 - ratio),
			Stretch: stretch.Response(ratio - 1),
		}
	}
	return out, nil
}

// Peak returns the largest squash and stretch across samples.
func Peak(samples []Sample) (squash, stretch float32) {
	for _, s := range samples {
		squash = math32.Max(squash, s.Squash)
		stretch = math32.Max(stretch, s.Stretch)
	}
	return squash, stretch
}

func clamp01(v float32) float32 {
	return math32.Min(1, math32.Max(0, v))
}
