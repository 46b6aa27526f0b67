package mesh

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Mesh is a triangle mesh in the layout a skinned renderer uploads:
// float32 positions and a flat index list, three indices per triangle.
type Mesh struct {
	Name      string
	Positions [][3]float32
	Triangles []int32
}

// VertexCount returns the number of vertex positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of complete index triples.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles) / 3
}

// Hash returns a content hash of the topology and rest pose.
// Two meshes with equal hashes produce equal edge and delta tables.
func (m *Mesh) Hash() uint64 {
	d := xxhash.New()
	var buf [12]byte

	binary.LittleEndian.PutUint64(buf[:8], uint64(len(m.Positions)))
	d.Write(buf[:8])
	for _, p := range m.Positions {
		binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(p[0]))
		binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(p[1]))
		binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(p[2]))
		d.Write(buf[:12])
	}

	binary.LittleEndian.PutUint64(buf[:8], uint64(len(m.Triangles)))
	d.Write(buf[:8])
	for _, idx := range m.Triangles {
		binary.LittleEndian.PutUint32(buf[:4], uint32(idx))
		d.Write(buf[:4])
	}
	return d.Sum64()
}

// Bounds returns the axis-aligned bounding box of the positions.
// An empty mesh returns two zero vectors.
func (m *Mesh) Bounds() (lo, hi [3]float32) {
	if len(m.Positions) == 0 {
		return lo, hi
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < lo[k] {
				lo[k] = p[k]
			}
			if p[k] > hi[k] {
				hi[k] = p[k]
			}
		}
	}
	return lo, hi
}
