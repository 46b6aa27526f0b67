package bmd

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// Encode serializes m in the unencrypted version 10 layout read by Decode.
func Encode(m *Model) ([]byte, error) {
	if len(m.Meshes) > maxMeshes {
		return nil, fmt.Errorf("bmd: %d meshes exceeds %d", len(m.Meshes), maxMeshes)
	}
	w := &writer{buf: make([]byte, 0, 1024)}
	w.buf = append(w.buf, 'B', 'M', 'D', 10)
	w.str(m.Name, nameLen)
	w.u16(uint16(len(m.Meshes)))
	w.u16(uint16(len(m.Bones)))
	w.u16(uint16(len(m.Actions)))

	for _, mesh := range m.Meshes {
		w.i16(int16(len(mesh.Verts)))
		w.i16(int16(len(mesh.Normals)))
		w.i16(int16(len(mesh.UVs)))
		w.i16(int16(len(mesh.Tris)))
		w.i16(0)
		for j, v := range mesh.Verts {
			var node int16
			if j < len(mesh.Nodes) {
				node = mesh.Nodes[j]
			}
			w.i16(node)
			w.i16(0)
			w.vec3(v)
		}
		for _, n := range mesh.Normals {
			w.i16(0)
			w.i16(0)
			w.vec3(n)
			w.i16(0)
			w.i16(0)
		}
		for _, uv := range mesh.UVs {
			w.f32(uv[0])
			w.f32(uv[1])
		}
		for _, t := range mesh.Tris {
			var b [triangleLen]byte
			b[0] = byte(t.Polygon)
			for k := 0; k < 4; k++ {
				binary.LittleEndian.PutUint16(b[2+k*2:], uint16(t.VI[k]))
				binary.LittleEndian.PutUint16(b[10+k*2:], uint16(t.NI[k]))
				binary.LittleEndian.PutUint16(b[18+k*2:], uint16(t.TI[k]))
			}
			w.buf = append(w.buf, b[:]...)
		}
		w.str(mesh.TexPath, nameLen)
	}

	for _, act := range m.Actions {
		w.i16(int16(act.NumKeys))
		if act.LockPosition {
			w.buf = append(w.buf, 1)
			for k := 0; k < act.NumKeys; k++ {
				var off [3]float32
				if k < len(act.Offsets) {
					off = act.Offsets[k]
				}
				w.vec3(off)
			}
		} else {
			w.buf = append(w.buf, 0)
		}
	}

	for _, bone := range m.Bones {
		if bone.IsDummy {
			w.buf = append(w.buf, 1)
			continue
		}
		w.buf = append(w.buf, 0)
		w.str(bone.Name, nameLen)
		w.i16(int16(bone.Parent))
		for a, act := range m.Actions {
			if act.NumKeys <= 0 {
				continue
			}
			var keys []Key
			if a < len(bone.Frames) {
				keys = bone.Frames[a]
			}
			if len(keys) != act.NumKeys {
				return nil, fmt.Errorf("bmd: bone %q has %d keys for action %d, want %d", bone.Name, len(keys), a, act.NumKeys)
			}
			for _, k := range keys {
				w.vec3(k.Position)
			}
			for _, k := range keys {
				w.vec3(k.Rotation)
			}
		}
	}
	return w.buf, nil
}

// WriteFile encodes m to path.
func WriteFile(path string, m *Model) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("bmd: write %s: %w", path, err)
	}
	return nil
}

type writer struct {
	buf []byte
}

func (w *writer) str(s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	w.buf = append(w.buf, b...)
}

func (w *writer) i16(v int16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v)) }

func (w *writer) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }

func (w *writer) f32(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *writer) vec3(v [3]float32) {
	w.f32(v[0])
	w.f32(v[1])
	w.f32(v[2])
}
