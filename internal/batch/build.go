package batch

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"tension-tools/internal/bake"
	"tension-tools/internal/edges"
	"tension-tools/internal/mesh"
)

// BuildTable builds m's edge table. A Fixed build that overflows its
// capacity is retried with doubled capacity up to limit, then once more
// with the HashSet strategy. The options that succeeded are returned.
func BuildTable(m *mesh.Mesh, opts edges.Options, limit int) (*edges.Table, edges.Options, error) {
	for {
		t, err := edges.BuildMesh(m, opts)
		if err == nil {
			return t, opts, nil
		}
		var capErr *edges.CapacityError
		if opts.Strategy != edges.Fixed || !errors.As(err, &capErr) {
			return nil, opts, err
		}
		next := capErr.Capacity * 2
		if next > limit {
			opts.Strategy = edges.HashSet
			opts.MaxDegree = 0
			continue
		}
		opts.MaxDegree = next
	}
}

// Key is the bake cache key of a mesh built under the given degenerate
// policy. The default policy keys by the mesh hash alone.
func Key(m *mesh.Mesh, policy edges.DegeneratePolicy) uint64 {
	h := m.Hash()
	if policy == edges.DegenerateKeep {
		return h
	}
	var buf [9]byte
	binary.LittleEndian.PutUint64(buf[:8], h)
	buf[8] = byte(policy)
	return xxhash.Sum64(buf[:])
}

// Bake builds the table and rest deltas of m.
func Bake(m *mesh.Mesh, opts edges.Options, limit int) (*bake.Baked, edges.Options, error) {
	t, used, err := BuildTable(m, opts, limit)
	if err != nil {
		return nil, used, fmt.Errorf("%s: %w", m.Name, err)
	}
	d, err := edges.Deltas(m.Positions, t)
	if err != nil {
		return nil, used, fmt.Errorf("%s: %w", m.Name, err)
	}
	return &bake.Baked{Hash: Key(m, opts.Degenerate), Table: t, Deltas: d, Build: used}, used, nil
}
