// Package bench compares edge table strategies on the same mesh.
package bench

import (
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/DmitriyVTitov/size"
	"github.com/dustin/go-humanize"

	"tension-tools/internal/edges"
	"tension-tools/internal/mesh"
)

// Case is one named build configuration.
type Case struct {
	Name    string
	Options edges.Options
}

// DefaultCases runs both strategies, Fixed at the given capacity.
func DefaultCases(maxDegree int) []Case {
	return []Case{
		{Name: "hashset", Options: edges.Options{Strategy: edges.HashSet}},
		{Name: fmt.Sprintf("fixed/%d", maxDegree), Options: edges.Options{Strategy: edges.Fixed, MaxDegree: maxDegree}},
	}
}

// Stat is the timing and memory record of one case.
type Stat struct {
	Case         string
	Runs         int
	Min          time.Duration
	Mean         time.Duration
	Max          time.Duration
	AllocBytes   uint64 // heap allocated by one build
	ScratchBytes int    // Fixed strategy scratch, 0 for HashSet
	ResultBytes  int    // in-memory size of the table
	Edges        int
	Err          error
}

// Report is the outcome of running every case against one mesh.
type Report struct {
	Mesh       string
	Vertices   int
	Triangles  int
	Stats      []Stat
	Equivalent bool
	Mismatch   error // first difference found, when not Equivalent
}

// Run builds m iterations times per case. The tables of all successful
// cases are compared against the first; a failing case (for example a
// capacity overflow) is reported in its Stat and skipped by the check.
func Run(m *mesh.Mesh, cases []Case, iterations int) Report {
	iterations = max(iterations, 1)
	r := Report{Mesh: m.Name, Vertices: m.VertexCount(), Triangles: m.TriangleCount(), Equivalent: true}

	var ref *edges.Table
	for _, c := range cases {
		st, t := runCase(m, c, iterations)
		r.Stats = append(r.Stats, st)
		if t == nil {
			continue
		}
		if ref == nil {
			ref = t
			continue
		}
		if err := edges.Compare(ref, t); err != nil && r.Equivalent {
			r.Equivalent = false
			r.Mismatch = fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	return r
}

func runCase(m *mesh.Mesh, c Case, iterations int) (Stat, *edges.Table) {
	st := Stat{Case: c.Name}
	if c.Options.Strategy == edges.Fixed {
		md := c.Options.MaxDegree
		if md <= 0 {
			md = edges.DefaultMaxDegree
		}
		st.ScratchBytes = edges.ScratchBytes(m.VertexCount(), md)
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	t, err := edges.BuildMesh(m, c.Options)
	runtime.ReadMemStats(&after)
	if err != nil {
		st.Err = err
		return st, nil
	}
	st.AllocBytes = after.TotalAlloc - before.TotalAlloc
	st.ResultBytes = size.Of(t)
	st.Edges = t.EdgeCount()

	var total time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		if _, err := edges.BuildMesh(m, c.Options); err != nil {
			st.Err = err
			return st, nil
		}
		d := time.Since(start)
		if i == 0 || d < st.Min {
			st.Min = d
		}
		st.Max = max(st.Max, d)
		total += d
	}
	st.Runs = iterations
	st.Mean = total / time.Duration(iterations)
	return st, t
}

// Write prints r as an aligned table.
func (r Report) Write(w io.Writer) error {
	fmt.Fprintf(w, "%s: %s vertices, %s triangles\n", r.Mesh,
		humanize.Comma(int64(r.Vertices)), humanize.Comma(int64(r.Triangles)))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  case\truns\tmin\tmean\tmax\talloc\tscratch\tresult\tedges")
	for _, s := range r.Stats {
		if s.Err != nil {
			fmt.Fprintf(tw, "  %s\tFAILED: %v\n", s.Case, s.Err)
			continue
		}
		fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Case, s.Runs, s.Min, s.Mean, s.Max,
			humanize.IBytes(s.AllocBytes), humanize.IBytes(uint64(s.ScratchBytes)),
			humanize.IBytes(uint64(s.ResultBytes)), humanize.Comma(int64(s.Edges)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if r.Equivalent {
		_, err := fmt.Fprintln(w, "  strategies agree")
		return err
	}
	_, err := fmt.Fprintf(w, "  MISMATCH %v\n", r.Mismatch)
	return err
}
