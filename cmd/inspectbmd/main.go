package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"tension-tools/internal/bmd"
	"tension-tools/internal/edges"
	"tension-tools/internal/mesh"
	"tension-tools/internal/skeleton"
	"tension-tools/internal/texture"
)

func main() {
	texDir := flag.String("textures", "", "Texture directory (default: the model's directory)")
	flag.Parse()

	failed := false
	for _, arg := range flag.Args() {
		model, err := bmd.Parse(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Parse error %s: %v\n", arg, err)
			failed = true
			continue
		}
		dir := *texDir
		if dir == "" {
			dir = filepath.Dir(arg)
		}
		idx := texture.BuildIndex(dir)

		fmt.Printf("\n=== %s (v%d meshes=%d bones=%d actions=%d) ===\n",
			arg, model.Version, len(model.Meshes), len(model.Bones), len(model.Actions))
		for a, act := range model.Actions {
			fmt.Printf("  Action[%d]: keys=%d lock=%v\n", a, act.NumKeys, act.LockPosition)
		}

		rest, err := skeleton.Pose(model, 0, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Pose error %s: %v\n", arg, err)
			failed = true
			continue
		}
		for i := range model.Meshes {
			g := model.Meshes[i].Geometry(fmt.Sprintf("%s#%d", arg, i))
			g.Positions = rest[i]
			printMesh(i, &model.Meshes[i], g, idx)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func printMesh(i int, bm *bmd.Mesh, g *mesh.Mesh, idx *texture.Index) {
	stem := strings.TrimSuffix(filepath.Base(strings.ReplaceAll(bm.TexPath, "\\", "/")), filepath.Ext(bm.TexPath))
	texInfo := "MISSING"
	if p, ok := idx.ResolvePath(bm.TexPath); ok {
		texInfo = filepath.Base(p)
	}
	lo, hi := g.Bounds()
	fmt.Printf("  Mesh[%d]: v=%s t=%s tex=%q (%s) min=(%.0f,%.0f,%.0f) max=(%.0f,%.0f,%.0f)\n",
		i, humanize.Comma(int64(g.VertexCount())), humanize.Comma(int64(g.TriangleCount())), stem, texInfo,
		lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])

	t, err := edges.BuildMesh(g, edges.Options{Strategy: edges.HashSet, Canonical: true})
	if err != nil {
		fmt.Printf("    topology: %v\n", err)
		return
	}
	_, comps := t.Components()
	fmt.Printf("    edges=%s undirected=%s max_degree=%d components=%d symmetric=%v self_edges=%d degenerate_tris=%d\n",
		humanize.Comma(int64(t.EdgeCount())), humanize.Comma(int64(t.UndirectedEdges())),
		t.MaxDegree(), comps, t.Symmetric(), t.SelfEdges(), degenerate(g))

	var b strings.Builder
	for d, n := range t.DegreeHistogram() {
		if n > 0 {
			fmt.Fprintf(&b, " %d:%d", d, n)
		}
	}
	fmt.Printf("    degree histogram:%s\n", b.String())
	if md := t.MaxDegree(); md > edges.DefaultMaxDegree {
		fmt.Printf("    fixed strategy needs max_degree >= %d\n", md)
	}
}

func degenerate(g *mesh.Mesh) int {
	n := 0
	for t := 0; t+2 < len(g.Triangles); t += 3 {
		a, b, c := g.Triangles[t], g.Triangles[t+1], g.Triangles[t+2]
		if a == b || b == c || a == c {
			n++
		}
	}
	return n
}
