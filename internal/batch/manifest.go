package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"tension-tools/internal/bake"
)

// Manifest is written as manifest.json next to the bakes.
type Manifest struct {
	Generated time.Time  `json:"generated"`
	ModelDir  string     `json:"model_dir"`
	Mode      string     `json:"mode"`
	Strategy  string     `json:"strategy"`
	Models    []Result   `json:"models"`
	Cache     bake.Stats `json:"cache"`
	Summary   Summary    `json:"summary"`
}

// WriteManifest writes m as indented JSON, with bake and preview paths
// made relative to the manifest's directory.
func WriteManifest(path string, m Manifest) error {
	base := filepath.Dir(path)
	rel := func(p string) string {
		if p == "" {
			return ""
		}
		if r, err := filepath.Rel(base, p); err == nil {
			return filepath.ToSlash(r)
		}
		return p
	}
	models := make([]Result, len(m.Models))
	for i, r := range m.Models {
		r.Preview = rel(r.Preview)
		r.Meshes = append([]MeshResult(nil), r.Meshes...)
		for j := range r.Meshes {
			r.Meshes[j].BakeFile = rel(r.Meshes[j].BakeFile)
		}
		models[i] = r
	}
	m.Models = models

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("batch: read manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("batch: parse manifest %s: %w", path, err)
	}
	return m, nil
}

// Summary aggregates a run.
type Summary struct {
	Models    int           `json:"models"`
	Failed    int           `json:"failed"`
	Meshes    int           `json:"meshes"`
	Vertices  int           `json:"vertices"`
	Edges     int           `json:"edges"`
	Fallbacks int           `json:"fallbacks"`
	BakeBytes int64         `json:"bake_bytes"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Summarize totals results. strategy is the configured strategy name, used
// to count meshes that needed the capacity fallback.
func Summarize(results []Result, strategy string, elapsed time.Duration) Summary {
	s := Summary{Models: len(results), Elapsed: elapsed}
	for _, r := range results {
		if !r.Success {
			s.Failed++
			continue
		}
		for _, m := range r.Meshes {
			s.Meshes++
			s.Vertices += m.Vertices
			s.Edges += m.Edges
			if m.Strategy != "" && m.Strategy != strategy {
				s.Fallbacks++
			}
			if st, err := os.Stat(m.BakeFile); err == nil {
				s.BakeBytes += st.Size()
			}
		}
	}
	return s
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s models (%s failed), %s meshes, %s vertices, %s directed edges",
		humanize.Comma(int64(s.Models)), humanize.Comma(int64(s.Failed)),
		humanize.Comma(int64(s.Meshes)), humanize.Comma(int64(s.Vertices)), humanize.Comma(int64(s.Edges)))
	if s.Fallbacks > 0 {
		fmt.Fprintf(&b, ", %d hash-set fallbacks", s.Fallbacks)
	}
	fmt.Fprintf(&b, ", %s baked in %s", humanize.IBytes(uint64(s.BakeBytes)), s.Elapsed.Round(time.Millisecond))
	return b.String()
}
