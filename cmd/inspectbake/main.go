package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"tension-tools/internal/bake"
)

func main() {
	verbose := flag.Int("v", 0, "Print neighbors and deltas of the first N vertices")
	flag.Parse()

	failed := false
	for _, path := range flag.Args() {
		if err := inspect(path, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error %s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func inspect(path string, verbose int) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	b, err := bake.Decode(raw)
	if err != nil {
		return err
	}
	h, err := bake.ReadHeader(raw)
	if err != nil {
		return err
	}

	t := b.Table
	fmt.Printf("\n=== %s ===\n", path)
	fmt.Printf("  hash=%016x version=%s format=%s/%s size=%s\n", b.Hash, h.Version, h.Compression, h.Checksum, humanize.IBytes(uint64(len(raw))))
	fmt.Printf("  vertices=%s edges=%s undirected=%s max_degree=%d symmetric=%v self_edges=%d\n",
		humanize.Comma(int64(t.VertexCount())), humanize.Comma(int64(t.EdgeCount())),
		humanize.Comma(int64(t.UndirectedEdges())), t.MaxDegree(), t.Symmetric(), t.SelfEdges())

	for v := 0; v < min(verbose, t.VertexCount()); v++ {
		lo, hi := t.Range(v)
		fmt.Printf("  v%-6d %v\n", v, t.Neighbors(v))
		for slot := lo; slot < hi; slot++ {
			d := b.Deltas[slot]
			fmt.Printf("          -> %-6d (%.4f, %.4f, %.4f) |%.4f|\n", t.Neighbors(v)[slot-lo], d[0], d[1], d[2], d.Len())
		}
	}
	return nil
}
