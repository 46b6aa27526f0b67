package edges

import (
	"fmt"
	"strings"
)

// DefaultMaxDegree is the per-vertex capacity of the Fixed strategy.
// Near-manifold meshes average six neighbors per vertex.
const DefaultMaxDegree = 16

// initialSetCapacity is the size hint for lazily created hash sets.
const initialSetCapacity = 8

// Strategy selects how per-vertex neighbor sets are accumulated.
type Strategy int

const (
	// HashSet keeps one dynamically grown hash set per touched vertex.
	// Degree is unbounded; neighbor order within a vertex is not stable.
	HashSet Strategy = iota
	// Fixed keeps all sets in one vertexCount×MaxDegree slice with
	// linear-scan deduplication. Neighbor order is discovery order.
	Fixed
)

func (s Strategy) String() string {
	switch s {
	case HashSet:
		return "hashset"
	case Fixed:
		return "fixed"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy accepts "hashset"/"hash" and "fixed".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hashset", "hash", "dynamic":
		return HashSet, nil
	case "fixed", "linear":
		return Fixed, nil
	}
	return 0, fmt.Errorf("edges: unknown strategy %q", s)
}

// DegeneratePolicy decides what happens to triangles that repeat a vertex.
type DegeneratePolicy int

const (
	// DegenerateKeep inserts the repeated pair like any other, which stores
	// a self-edge on the repeated vertex.
	DegenerateKeep DegeneratePolicy = iota
	// DegenerateSkip ignores the whole triangle.
	DegenerateSkip
	// DegenerateReject fails the build.
	DegenerateReject
)

func (p DegeneratePolicy) String() string {
	switch p {
	case DegenerateKeep:
		return "keep"
	case DegenerateSkip:
		return "skip"
	case DegenerateReject:
		return "reject"
	default:
		return fmt.Sprintf("DegeneratePolicy(%d)", int(p))
	}
}

// ParseDegeneratePolicy accepts "keep", "skip" and "reject".
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keep", "":
		return DegenerateKeep, nil
	case "skip":
		return DegenerateSkip, nil
	case "reject":
		return DegenerateReject, nil
	}
	return 0, fmt.Errorf("edges: unknown degenerate policy %q", s)
}

// Options configures Build. The zero value uses the HashSet strategy,
// keeps degenerate triangles and leaves neighbors in discovery order.
type Options struct {
	Strategy   Strategy
	MaxDegree  int // Fixed only; <= 0 means DefaultMaxDegree
	Degenerate DegeneratePolicy
	// Canonical sorts every vertex's neighbors ascending so the packed
	// table is identical across strategies, runs and platforms.
	Canonical bool
}

func (o Options) maxDegree() int {
	if o.MaxDegree <= 0 {
		return DefaultMaxDegree
	}
	return o.MaxDegree
}
