package edges

import (
	"fmt"
	"slices"
)

// Table is the packed adjacency of a mesh: VertexCount offsets followed by
// EdgeCount neighbor indices. offset[i] is the exclusive end of vertex i's
// neighbors within the neighbor section. The layout is uploaded verbatim to
// GPU buffers, so it never changes shape.
//
// A Table is immutable once built.
type Table struct {
	vertexCount int
	data        []int32
}

// FromRaw wraps a packed table read from storage after checking that its
// offsets and neighbor indices are consistent. raw is copied.
func FromRaw(vertexCount int, raw []int32) (*Table, error) {
	if vertexCount < 0 || vertexCount > len(raw) {
		return nil, fmt.Errorf("%w: vertex count %d with %d entries", ErrMalformed, vertexCount, len(raw))
	}
	t := &Table{vertexCount: vertexCount, data: slices.Clone(raw)}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// VertexCount returns the length of the offset section.
func (t *Table) VertexCount() int {
	return t.vertexCount
}

// EdgeCount returns the length of the neighbor section, the sum of all
// degrees.
func (t *Table) EdgeCount() int {
	return len(t.data) - t.vertexCount
}

// Len returns the total number of int32 entries in the packed table.
func (t *Table) Len() int {
	return len(t.data)
}

// Raw returns a copy of the packed table.
func (t *Table) Raw() []int32 {
	return slices.Clone(t.data)
}

// Offsets returns a copy of the offset section.
func (t *Table) Offsets() []int32 {
	return slices.Clone(t.data[:t.vertexCount])
}

// NeighborSection returns a copy of the neighbor section.
func (t *Table) NeighborSection() []int32 {
	return slices.Clone(t.data[t.vertexCount:])
}

// Range returns the neighbor-section slots [lo, hi) owned by vertex v.
func (t *Table) Range(v int) (lo, hi int) {
	if v > 0 {
		lo = int(t.data[v-1])
	}
	return lo, int(t.data[v])
}

// Degree returns the number of distinct neighbors of v.
func (t *Table) Degree(v int) int {
	lo, hi := t.Range(v)
	return hi - lo
}

// Neighbors returns v's neighbors. The slice aliases the table and must
// not be modified.
func (t *Table) Neighbors(v int) []int32 {
	lo, hi := t.Range(v)
	return t.data[t.vertexCount+lo : t.vertexCount+hi : t.vertexCount+hi]
}

// MaxDegree returns the largest vertex degree, 0 for an empty table.
func (t *Table) MaxDegree() int {
	m := 0
	for v := 0; v < t.vertexCount; v++ {
		if d := t.Degree(v); d > m {
			m = d
		}
	}
	return m
}

// Validate checks offset monotonicity, the terminal offset and that every
// neighbor index lies in [0, VertexCount).
func (t *Table) Validate() error {
	prev := int32(0)
	for v := 0; v < t.vertexCount; v++ {
		off := t.data[v]
		if off < prev {
			return fmt.Errorf("%w: offset of vertex %d decreases (%d < %d)", ErrMalformed, v, off, prev)
		}
		prev = off
	}
	if int(prev) != t.EdgeCount() {
		return fmt.Errorf("%w: last offset %d, neighbor section holds %d", ErrMalformed, prev, t.EdgeCount())
	}
	for i, n := range t.data[t.vertexCount:] {
		if n < 0 || int(n) >= t.vertexCount {
			return fmt.Errorf("%w: slot %d holds vertex %d", ErrMalformed, i, n)
		}
	}
	return nil
}

// Canonical returns a copy whose neighbor lists are sorted ascending.
func (t *Table) Canonical() *Table {
	c := &Table{vertexCount: t.vertexCount, data: slices.Clone(t.data)}
	c.sortNeighbors()
	return c
}

func (t *Table) sortNeighbors() {
	prev := 0
	neighbors := t.data[t.vertexCount:]
	for v := 0; v < t.vertexCount; v++ {
		end := int(t.data[v])
		slices.Sort(neighbors[prev:end])
		prev = end
	}
}
