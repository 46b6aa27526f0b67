package edges

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Delta is a rest-pose edge vector, owner minus neighbor, in the 12-byte
// layout of the GPU delta buffer.
type Delta [3]float32

// Len returns the Euclidean length of d.
func (d Delta) Len() float32 {
	return math32.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}

// Sub returns a - b componentwise.
func Sub(a, b [3]float32) Delta {
	return Delta{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Deltas derives one edge vector per neighbor slot of t, in slot order:
// slot k owned by vertex i pointing at j holds positions[i] - positions[j].
// The result depends on t's slot order, so it must be derived again
// whenever t is rebuilt or the rest pose changes.
func Deltas(positions [][3]float32, t *Table) ([]Delta, error) {
	if len(positions) != t.vertexCount {
		return nil, fmt.Errorf("%w: %d positions for %d vertices", ErrPositionCount, len(positions), t.vertexCount)
	}
	out := make([]Delta, t.EdgeCount())
	neighbors := t.data[t.vertexCount:]
	iterator := 0
	for i := 0; i < t.vertexCount; i++ {
		end := int(t.data[i])
		for iterator < end {
			out[iterator] = Sub(positions[i], positions[neighbors[iterator]])
			iterator++
		}
	}
	return out, nil
}
