package mesh

import "math"

// Triangle returns a single right triangle in the XY plane.
func Triangle() *Mesh {
	return &Mesh{
		Name:      "triangle",
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Triangles: []int32{0, 1, 2},
	}
}

// Quad returns two triangles (0,1,2) and (1,2,3) sharing the edge 1-2.
func Quad() *Mesh {
	return &Mesh{
		Name:      "quad",
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		Triangles: []int32{0, 1, 2, 1, 2, 3},
	}
}

// Grid returns a w×h grid of quads in the XY plane, each split into two
// triangles along the same diagonal. Interior vertices have degree 6.
func Grid(w, h int) *Mesh {
	if w < 1 || h < 1 {
		return &Mesh{Name: "grid"}
	}
	cols := w + 1
	pos := make([][3]float32, 0, cols*(h+1))
	for y := 0; y <= h; y++ {
		for x := 0; x <= w; x++ {
			pos = append(pos, [3]float32{float32(x), float32(y), 0})
		}
	}
	tris := make([]int32, 0, w*h*6)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := int32(y*cols + x)
			c := int32(cols)
			tris = append(tris, i, i+1, i+c)
			tris = append(tris, i+1, i+c+1, i+c)
		}
	}
	return &Mesh{Name: "grid", Positions: pos, Triangles: tris}
}

// GridEdges returns the number of undirected edges in Grid(w, h).
func GridEdges(w, h int) int {
	return w*(h+1) + h*(w+1) + w*h
}

// Fan returns a closed triangle fan: hub vertex 0 surrounded by n rim
// vertices. The hub has degree n and every rim vertex degree 3.
func Fan(n int) *Mesh {
	if n < 3 {
		n = 3
	}
	pos := make([][3]float32, 0, n+1)
	pos = append(pos, [3]float32{0, 0, 0})
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pos = append(pos, [3]float32{float32(math.Cos(a)), float32(math.Sin(a)), 0})
	}
	tris := make([]int32, 0, n*3)
	for i := 1; i <= n; i++ {
		next := i%n + 1
		tris = append(tris, 0, int32(i), int32(next))
	}
	return &Mesh{Name: "fan", Positions: pos, Triangles: tris}
}

// Tetrahedron returns a closed manifold with 4 vertices and 6 edges.
func Tetrahedron() *Mesh {
	return &Mesh{
		Name: "tetrahedron",
		Positions: [][3]float32{
			{1, 1, 1}, {-1, -1, 1}, {-1, 1, -1}, {1, -1, -1},
		},
		Triangles: []int32{
			0, 1, 2,
			0, 3, 1,
			0, 2, 3,
			1, 3, 2,
		},
	}
}

// Cube returns a closed unit cube with 8 vertices, 12 triangles and 18 edges.
func Cube() *Mesh {
	return &Mesh{
		Name: "cube",
		Positions: [][3]float32{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
		},
		Triangles: []int32{
			0, 2, 1, 0, 3, 2, // -z
			4, 5, 6, 4, 6, 7, // +z
			0, 1, 5, 0, 5, 4, // -y
			3, 6, 2, 3, 7, 6, // +y
			0, 4, 7, 0, 7, 3, // -x
			1, 2, 6, 1, 6, 5, // +x
		},
	}
}
