package bmd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
)

var (
	ErrHeader    = errors.New("bmd: invalid header")
	ErrEncrypted = errors.New("bmd: encrypted model versions are not supported")
	ErrTruncated = errors.New("bmd: truncated data")
)

const (
	maxMeshes   = 100
	nameLen     = 32
	triangleLen = 64
)

// Parse reads a BMD file. Only the unencrypted layout (version 10) is
// supported; versions 12, 14 and 15 return ErrEncrypted.
func Parse(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bmd: read %s: %w", path, err)
	}
	m, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return m, nil
}

// Decode parses an in-memory BMD file.
func Decode(raw []byte) (*Model, error) {
	if len(raw) < 4 || string(raw[:3]) != "BMD" {
		return nil, ErrHeader
	}
	version := raw[3]
	switch version {
	case 12, 14, 15:
		return nil, fmt.Errorf("%w: version %d", ErrEncrypted, version)
	}

	r := &reader{data: raw[4:]}
	m, err := r.parse()
	if err != nil {
		return nil, err
	}
	if r.short {
		return nil, ErrTruncated
	}
	m.Version = version
	return m, nil
}

// reader returns zero values past the end of data and records the overrun.
type reader struct {
	data  []byte
	off   int
	short bool
}

func (r *reader) take(n int) []byte {
	if n < 0 || r.off+n > len(r.data) {
		r.off = len(r.data)
		r.short = true
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) readStr(n int) string {
	s := r.take(n)
	for i, b := range s {
		if b == 0 {
			return string(s[:i])
		}
	}
	return string(s)
}

func (r *reader) readI16() int16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(b))
}

func (r *reader) readU16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) readF32() float32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func (r *reader) readVec3() [3]float32 {
	return [3]float32{r.readF32(), r.readF32(), r.readF32()}
}

func (r *reader) readByte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) parse() (*Model, error) {
	m := &Model{Name: r.readStr(nameLen)}
	meshCount := int(r.readU16())
	boneCount := int(r.readU16())
	actionCount := int(r.readU16())

	if meshCount > maxMeshes {
		return nil, fmt.Errorf("bmd: invalid mesh count %d", meshCount)
	}

	m.Meshes = make([]Mesh, 0, meshCount)
	for i := 0; i < meshCount && !r.short; i++ {
		mesh, err := r.parseMesh(i)
		if err != nil {
			return nil, err
		}
		m.Meshes = append(m.Meshes, mesh)
	}

	m.Actions = make([]Action, actionCount)
	for a := range m.Actions {
		act := Action{NumKeys: int(r.readI16())}
		act.LockPosition = r.readByte() > 0
		if act.LockPosition && act.NumKeys > 0 {
			act.Offsets = make([][3]float32, act.NumKeys)
			for k := range act.Offsets {
				act.Offsets[k] = r.readVec3()
			}
		}
		m.Actions[a] = act
	}

	m.Bones = make([]Bone, 0, boneCount)
	for b := 0; b < boneCount && !r.short; b++ {
		if r.readByte() > 0 {
			m.Bones = append(m.Bones, Bone{Parent: -1, IsDummy: true})
			continue
		}
		bone := Bone{
			Name:   r.readStr(nameLen),
			Parent: int(r.readI16()),
			Frames: make([][]Key, actionCount),
		}
		for a, act := range m.Actions {
			if act.NumKeys <= 0 {
				continue
			}
			keys := make([]Key, act.NumKeys)
			for k := range keys {
				keys[k].Position = r.readVec3()
			}
			for k := range keys {
				keys[k].Rotation = r.readVec3()
			}
			bone.Frames[a] = keys
		}
		m.Bones = append(m.Bones, bone)
	}

	return m, nil
}

func (r *reader) parseMesh(i int) (Mesh, error) {
	nv := int(r.readI16())
	nn := int(r.readI16())
	ntc := int(r.readI16())
	nt := int(r.readI16())
	_ = r.readI16() // texture index
	if nv < 0 || nn < 0 || ntc < 0 || nt < 0 {
		return Mesh{}, fmt.Errorf("bmd: mesh %d has negative element counts", i)
	}

	// Vertices: node:i16, pad:i16, x,y,z:f32
	verts := make([][3]float32, nv)
	nodes := make([]int16, nv)
	for j := 0; j < nv; j++ {
		nodes[j] = r.readI16()
		_ = r.readI16()
		verts[j] = r.readVec3()
	}

	// Normals: node:i16, pad:i16, nx,ny,nz:f32, bindVertex:i16, pad:i16
	normals := make([][3]float32, nn)
	for j := 0; j < nn; j++ {
		_ = r.readI16()
		_ = r.readI16()
		normals[j] = r.readVec3()
		_ = r.readI16()
		_ = r.readI16()
	}

	uvs := make([][2]float32, ntc)
	for j := 0; j < ntc; j++ {
		uvs[j] = [2]float32{r.readF32(), r.readF32()}
	}

	// Triangles: polygon:u8 at 0, vertex/normal/texcoord index quads at 2, 10, 18.
	tris := make([]Triangle, nt)
	for j := 0; j < nt; j++ {
		b := r.take(triangleLen)
		if b == nil {
			break
		}
		t := Triangle{Polygon: int(b[0])}
		for k := 0; k < 4; k++ {
			t.VI[k] = int16(binary.LittleEndian.Uint16(b[2+k*2:]))
			t.NI[k] = int16(binary.LittleEndian.Uint16(b[10+k*2:]))
			t.TI[k] = int16(binary.LittleEndian.Uint16(b[18+k*2:]))
		}
		tris[j] = t
	}

	texPath := strings.ReplaceAll(r.readStr(nameLen), "\\", "/")

	return Mesh{
		Verts:   verts,
		Nodes:   nodes,
		Normals: normals,
		UVs:     uvs,
		Tris:    tris,
		TexPath: texPath,
	}, nil
}
