package edges

import (
	"math"

	"tension-tools/internal/mesh"
)

// accumulator collects symmetric neighbor sets during one build.
type accumulator interface {
	// add inserts n into v's set and reports whether it was absent.
	add(v, n int32) (bool, error)
	// copyTo writes v's neighbors into dst and returns how many it wrote.
	copyTo(dst []int32, v int) int
	// release returns scratch memory. Safe to call more than once.
	release()
}

// Build extracts the edge table of a triangle list.
//
// Every index must lie in [0, vertexCount); the triangle list is validated
// up front and nothing is allocated for invalid input. On error the table
// is nil: there are no partial results.
func Build(vertexCount int, triangles []int32, opts Options) (*Table, error) {
	if err := validate(vertexCount, triangles, opts.Degenerate); err != nil {
		return nil, err
	}

	var acc accumulator
	switch opts.Strategy {
	case Fixed:
		acc = newFixedSets(vertexCount, opts.maxDegree())
	default:
		acc = newHashSets(vertexCount)
	}
	defer acc.release()

	total, err := accumulate(acc, triangles, opts.Degenerate)
	if err != nil {
		return nil, err
	}
	if vertexCount+total > math.MaxInt32 {
		return nil, ErrTooLarge
	}

	t := pack(vertexCount, total, acc)
	if opts.Canonical {
		t.sortNeighbors()
	}
	return t, nil
}

// BuildMesh is Build over a mesh's vertex count and triangle list.
func BuildMesh(m *mesh.Mesh, opts Options) (*Table, error) {
	return Build(m.VertexCount(), m.Triangles, opts)
}

func validate(vertexCount int, triangles []int32, policy DegeneratePolicy) error {
	if vertexCount < 0 {
		return ErrNegativeVertexCount
	}
	if vertexCount > math.MaxInt32 {
		return ErrTooLarge
	}
	if len(triangles)%3 != 0 {
		return ErrTriangleCount
	}
	for i, idx := range triangles {
		if idx < 0 || int(idx) >= vertexCount {
			return &IndexError{Triangle: i / 3, Corner: i % 3, Index: idx, VertexCount: vertexCount}
		}
	}
	if policy == DegenerateReject {
		for i := 0; i < len(triangles); i += 3 {
			a, b, c := triangles[i], triangles[i+1], triangles[i+2]
			if a == b || b == c || a == c {
				return &DegenerateError{Triangle: i / 3, A: a, B: b, C: c}
			}
		}
	}
	return nil
}

// accumulate inserts the six directed pairs of every triangle and returns
// the number of successful inserts.
func accumulate(acc accumulator, triangles []int32, policy DegeneratePolicy) (int, error) {
	total := 0
	for i := 0; i < len(triangles); i += 3 {
		a, b, c := triangles[i], triangles[i+1], triangles[i+2]
		if policy == DegenerateSkip && (a == b || b == c || a == c) {
			continue
		}
		pairs := [6][2]int32{{a, b}, {a, c}, {b, a}, {b, c}, {c, a}, {c, b}}
		for _, p := range pairs {
			added, err := acc.add(p[0], p[1])
			if err != nil {
				return 0, err
			}
			if added {
				total++
			}
		}
	}
	return total, nil
}

// pack lays the sets out as vertexCount offsets followed by the neighbors.
func pack(vertexCount, total int, acc accumulator) *Table {
	data := make([]int32, vertexCount+total)
	neighbors := data[vertexCount:]
	iterator := 0
	for v := 0; v < vertexCount; v++ {
		iterator += acc.copyTo(neighbors[iterator:], v)
		data[v] = int32(iterator)
	}
	return &Table{vertexCount: vertexCount, data: data}
}
