package edges

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeVertexCount = errors.New("edges: negative vertex count")
	ErrTriangleCount       = errors.New("edges: triangle index count is not a multiple of 3")
	ErrIndexOutOfRange     = errors.New("edges: vertex index out of range")
	ErrCapacityExceeded    = errors.New("edges: vertex degree exceeds fixed capacity")
	ErrDegenerateTriangle  = errors.New("edges: degenerate triangle")
	ErrTooLarge            = errors.New("edges: table does not fit 32-bit indices")
	ErrPositionCount       = errors.New("edges: position count does not match vertex count")
	ErrMalformed           = errors.New("edges: malformed edge table")
)

// IndexError reports a triangle corner referencing a vertex outside [0, VertexCount).
type IndexError struct {
	Triangle    int
	Corner      int
	Index       int32
	VertexCount int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("edges: triangle %d corner %d: index %d outside [0, %d)",
		e.Triangle, e.Corner, e.Index, e.VertexCount)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// CapacityError reports a vertex that gained more distinct neighbors than
// the fixed-capacity strategy can hold. Rebuild with a larger MaxDegree or
// with the HashSet strategy.
type CapacityError struct {
	Vertex   int
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("edges: vertex %d has more than %d distinct neighbors", e.Vertex, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// DegenerateError reports a triangle with a repeated vertex index when the
// build was configured to reject them.
type DegenerateError struct {
	Triangle int
	A, B, C  int32
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("edges: triangle %d (%d,%d,%d) repeats a vertex", e.Triangle, e.A, e.B, e.C)
}

func (e *DegenerateError) Unwrap() error { return ErrDegenerateTriangle }

// MismatchError describes the first difference found by Compare.
type MismatchError struct {
	Vertex int // -1 for table-level differences
	Reason string
}

func (e *MismatchError) Error() string {
	if e.Vertex < 0 {
		return "edges: tables differ: " + e.Reason
	}
	return fmt.Sprintf("edges: tables differ at vertex %d: %s", e.Vertex, e.Reason)
}
