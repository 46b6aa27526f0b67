package edges

import "sync"

// fixedScratch is the reusable backing store of the Fixed strategy.
type fixedScratch struct {
	slots  []int32
	counts []int32
}

var scratchPool = sync.Pool{
	New: func() any { return new(fixedScratch) },
}

// fixedSets stores vertex v's neighbors in slots[v*stride : v*stride+counts[v]].
type fixedSets struct {
	stride  int
	slots   []int32
	counts  []int32
	scratch *fixedScratch
}

// clampStride caps a capacity at vertexCount: a set never holds more
// distinct neighbors than there are vertices, self-edges included.
func clampStride(vertexCount, stride int) int {
	return min(stride, max(vertexCount, 1))
}

func newFixedSets(vertexCount, stride int) *fixedSets {
	stride = clampStride(vertexCount, stride)
	s := scratchPool.Get().(*fixedScratch)
	n := vertexCount * stride
	if cap(s.slots) < n {
		s.slots = make([]int32, n)
	}
	if cap(s.counts) < vertexCount {
		s.counts = make([]int32, vertexCount)
	}
	f := &fixedSets{
		stride:  stride,
		slots:   s.slots[:n],
		counts:  s.counts[:vertexCount],
		scratch: s,
	}
	clear(f.counts)
	return f
}

// add scans v's used slots before checking capacity, so re-inserting a
// known neighbor into a full vertex is not an error.
func (f *fixedSets) add(v, n int32) (bool, error) {
	start := int(v) * f.stride
	count := int(f.counts[v])
	for _, x := range f.slots[start : start+count] {
		if x == n {
			return false, nil
		}
	}
	if count >= f.stride {
		return false, &CapacityError{Vertex: int(v), Capacity: f.stride}
	}
	f.slots[start+count] = n
	f.counts[v]++
	return true, nil
}

func (f *fixedSets) copyTo(dst []int32, v int) int {
	start := v * f.stride
	return copy(dst, f.slots[start:start+int(f.counts[v])])
}

func (f *fixedSets) release() {
	if f.scratch == nil {
		return
	}
	scratchPool.Put(f.scratch)
	f.scratch, f.slots, f.counts = nil, nil, nil
}

// ScratchBytes returns the scratch memory the Fixed strategy needs for a
// mesh of vertexCount vertices at the given capacity.
func ScratchBytes(vertexCount, maxDegree int) int {
	if maxDegree <= 0 {
		maxDegree = DefaultMaxDegree
	}
	return 4 * (vertexCount*clampStride(vertexCount, maxDegree) + vertexCount)
}
