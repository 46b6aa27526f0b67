package edges

import (
	"fmt"
	"slices"
)

// Symmetric reports whether v lists u for every u that lists v.
func (t *Table) Symmetric() bool {
	for u := 0; u < t.vertexCount; u++ {
		for _, v := range t.Neighbors(u) {
			if int(v) == u {
				continue
			}
			if !slices.Contains(t.Neighbors(int(v)), int32(u)) {
				return false
			}
		}
	}
	return true
}

// SelfEdges counts the neighbor slots where a vertex lists itself.
func (t *Table) SelfEdges() int {
	n := 0
	for v := 0; v < t.vertexCount; v++ {
		if slices.Contains(t.Neighbors(v), int32(v)) {
			n++
		}
	}
	return n
}

// UndirectedEdges counts unique unordered vertex pairs, self-edges
// included once each. On a symmetric table without self-edges this is
// EdgeCount()/2.
func (t *Table) UndirectedEdges() int {
	n := 0
	for v := 0; v < t.vertexCount; v++ {
		for _, u := range t.Neighbors(v) {
			if int(u) >= v {
				n++
			}
		}
	}
	return n
}

// DegreeHistogram returns h where h[d] is the number of vertices of degree d.
func (t *Table) DegreeHistogram() []int {
	h := make([]int, t.MaxDegree()+1)
	for v := 0; v < t.vertexCount; v++ {
		h[t.Degree(v)]++
	}
	return h
}

// Components labels connected components by breadth-first search over the
// adjacency. Vertices without neighbors are labelled -1 and not counted.
func (t *Table) Components() (labels []int, count int) {
	labels = make([]int, t.vertexCount)
	for i := range labels {
		labels[i] = -1
	}
	queue := make([]int32, 0, 64)
	for v := 0; v < t.vertexCount; v++ {
		if labels[v] >= 0 || t.Degree(v) == 0 {
			continue
		}
		queue = append(queue[:0], int32(v))
		labels[v] = count
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			for _, n := range t.Neighbors(int(curr)) {
				if labels[n] < 0 {
					labels[n] = count
					queue = append(queue, n)
				}
			}
		}
		count++
	}
	return labels, count
}

// Compare checks that a and b hold the same neighbor set for every vertex,
// ignoring order within a vertex. It returns nil or a *MismatchError.
func Compare(a, b *Table) error {
	if a.vertexCount != b.vertexCount {
		return &MismatchError{Vertex: -1, Reason: fmt.Sprintf("vertex count %d vs %d", a.vertexCount, b.vertexCount)}
	}
	if a.EdgeCount() != b.EdgeCount() {
		return &MismatchError{Vertex: -1, Reason: fmt.Sprintf("edge count %d vs %d", a.EdgeCount(), b.EdgeCount())}
	}
	var sa, sb []int32
	for v := 0; v < a.vertexCount; v++ {
		na, nb := a.Neighbors(v), b.Neighbors(v)
		if len(na) != len(nb) {
			return &MismatchError{Vertex: v, Reason: fmt.Sprintf("degree %d vs %d", len(na), len(nb))}
		}
		sa = append(sa[:0], na...)
		sb = append(sb[:0], nb...)
		slices.Sort(sa)
		slices.Sort(sb)
		if !slices.Equal(sa, sb) {
			return &MismatchError{Vertex: v, Reason: fmt.Sprintf("neighbors %v vs %v", sa, sb)}
		}
	}
	return nil
}

// EquivalentSets reports whether Compare finds no difference.
func EquivalentSets(a, b *Table) bool {
	return Compare(a, b) == nil
}
