package bmd

import "tension-tools/internal/mesh"

// Triangle holds polygon type and index quads into vertex/normal/texcoord arrays.
// Polygon == 4 means quad (two triangles: 0-1-2 and 0-2-3).
type Triangle struct {
	Polygon int
	VI      [4]int16
	NI      [4]int16
	TI      [4]int16
}

// Mesh holds the geometry of one sub-mesh in rest pose.
type Mesh struct {
	Verts   [][3]float32
	Nodes   []int16 // bone index per vertex
	Normals [][3]float32
	UVs     [][2]float32
	Tris    []Triangle
	TexPath string // texture reference, e.g. "skin_01.jpg"
}

// Action is one animation clip. Every non-dummy bone stores NumKeys frames for it.
type Action struct {
	NumKeys      int
	LockPosition bool
	Offsets      [][3]float32 // per-key root offsets, only when LockPosition
}

// Key is a bone's local transform at one frame.
type Key struct {
	Position [3]float32
	Rotation [3]float32 // Euler XYZ radians
}

// Bone is one node of the skeleton hierarchy. Frames[a][k] is the local
// transform for action a at key k.
type Bone struct {
	Name    string
	Parent  int
	IsDummy bool
	Frames  [][]Key
}

// Model is a parsed BMD file.
type Model struct {
	Name    string
	Version byte
	Meshes  []Mesh
	Bones   []Bone
	Actions []Action
}

// TriangleIndices flattens the mesh's polygons into triangle triples,
// splitting quads along the 0-2 diagonal.
func (m *Mesh) TriangleIndices() []int32 {
	out := make([]int32, 0, len(m.Tris)*3)
	for _, t := range m.Tris {
		out = append(out, int32(t.VI[0]), int32(t.VI[1]), int32(t.VI[2]))
		if t.Polygon == 4 {
			out = append(out, int32(t.VI[0]), int32(t.VI[2]), int32(t.VI[3]))
		}
	}
	return out
}

// UVIndices returns texture-coordinate indices parallel to TriangleIndices.
func (m *Mesh) UVIndices() []int32 {
	out := make([]int32, 0, len(m.Tris)*3)
	for _, t := range m.Tris {
		out = append(out, int32(t.TI[0]), int32(t.TI[1]), int32(t.TI[2]))
		if t.Polygon == 4 {
			out = append(out, int32(t.TI[0]), int32(t.TI[2]), int32(t.TI[3]))
		}
	}
	return out
}

// Geometry converts the sub-mesh to the renderer-neutral mesh layout.
// Positions are copied so later posing never touches the rest pose.
func (m *Mesh) Geometry(name string) *mesh.Mesh {
	pos := make([][3]float32, len(m.Verts))
	copy(pos, m.Verts)
	return &mesh.Mesh{
		Name:      name,
		Positions: pos,
		Triangles: m.TriangleIndices(),
	}
}
