package edges

// hashSets allocates one map per vertex the first time the vertex is touched.
type hashSets struct {
	sets []map[int32]struct{}
}

func newHashSets(vertexCount int) *hashSets {
	return &hashSets{sets: make([]map[int32]struct{}, vertexCount)}
}

func (h *hashSets) add(v, n int32) (bool, error) {
	s := h.sets[v]
	if s == nil {
		s = make(map[int32]struct{}, initialSetCapacity)
		h.sets[v] = s
	}
	if _, ok := s[n]; ok {
		return false, nil
	}
	s[n] = struct{}{}
	return true, nil
}

func (h *hashSets) copyTo(dst []int32, v int) int {
	i := 0
	for n := range h.sets[v] {
		dst[i] = n
		i++
	}
	return i
}

func (h *hashSets) release() {
	h.sets = nil
}
