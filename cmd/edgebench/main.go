package main

import (
	"flag"
	"fmt"
	"os"

	"tension-tools/internal/bench"
	"tension-tools/internal/bmd"
	"tension-tools/internal/edges"
	"tension-tools/internal/mesh"
	"tension-tools/internal/skeleton"
)

func main() {
	shape := flag.String("mesh", "grid", "Synthetic mesh: grid, fan, cube, tetrahedron or all")
	n := flag.Int("size", 256, "Grid side or fan rim count")
	iterations := flag.Int("n", 10, "Builds per strategy")
	maxDegree := flag.Int("max-degree", edges.DefaultMaxDegree, "Fixed strategy capacity")
	flag.Parse()

	var meshes []*mesh.Mesh
	if flag.NArg() > 0 {
		// BMD files given: benchmark each of their sub-meshes
		for _, path := range flag.Args() {
			ms, err := modelMeshes(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error %s: %v\n", path, err)
				os.Exit(1)
			}
			meshes = append(meshes, ms...)
		}
	} else {
		switch *shape {
		case "grid":
			meshes = append(meshes, mesh.Grid(*n, *n))
		case "fan":
			meshes = append(meshes, mesh.Fan(*n))
		case "cube":
			meshes = append(meshes, mesh.Cube())
		case "tetrahedron":
			meshes = append(meshes, mesh.Tetrahedron())
		case "all":
			meshes = append(meshes, mesh.Grid(*n, *n), mesh.Fan(*n), mesh.Cube(), mesh.Tetrahedron())
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown mesh %q\n", *shape)
			os.Exit(2)
		}
	}

	mismatch := false
	cases := bench.DefaultCases(*maxDegree)
	for _, m := range meshes {
		r := bench.Run(m, cases, *iterations)
		if err := r.Write(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		mismatch = mismatch || !r.Equivalent
	}
	if mismatch {
		os.Exit(1)
	}
}

func modelMeshes(path string) ([]*mesh.Mesh, error) {
	model, err := bmd.Parse(path)
	if err != nil {
		return nil, err
	}
	rest, err := skeleton.Pose(model, 0, 0)
	if err != nil {
		return nil, err
	}
	out := make([]*mesh.Mesh, len(model.Meshes))
	for i := range model.Meshes {
		out[i] = model.Meshes[i].Geometry(fmt.Sprintf("%s#%d", path, i))
		out[i].Positions = rest[i]
	}
	return out, nil
}
