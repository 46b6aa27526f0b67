package batch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tension-tools/internal/bake"
	"tension-tools/internal/bmd"
	"tension-tools/internal/edges"
	"tension-tools/internal/raster"
	"tension-tools/internal/skeleton"
	"tension-tools/internal/tension"
	"tension-tools/internal/texture"
)

// Config holds all shared resources for a batch run.
type Config struct {
	ModelDir       string
	OutputDir      string
	Cache          *bake.Cache
	Mode           bake.Mode
	Build          edges.Options
	MaxDegreeLimit int

	// Preview rendering
	Preview     bool
	Visualizer  raster.Mode
	Squash      tension.Property
	Stretch     tension.Property
	Action      int
	Frame       int
	TexResolver texture.Resolver
	RenderSize  int
	Supersample int

	Workers  int
	Progress bool // print a progress line every two seconds
	Log      *slog.Logger
}

func (c *Config) logger() *slog.Logger {
	if c.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Log
}

// MeshResult describes one baked sub-mesh.
type MeshResult struct {
	Index       int     `json:"index"`
	Vertices    int     `json:"vertices"`
	Triangles   int     `json:"triangles"`
	Edges       int     `json:"edges"`
	MaxDegree   int     `json:"max_degree"`
	Strategy    string  `json:"strategy"`
	Capacity    int     `json:"capacity,omitempty"`
	Source      string  `json:"source"`
	BakeFile    string  `json:"bake_file"`
	PeakSquash  float32 `json:"peak_squash,omitempty"`
	PeakStretch float32 `json:"peak_stretch,omitempty"`
}

// Result holds the outcome of processing one model.
type Result struct {
	Model    string        `json:"model"` // path relative to ModelDir
	Meshes   []MeshResult  `json:"meshes,omitempty"`
	Preview  string        `json:"preview,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
}

// Discover returns every .bmd file below root, relative and sorted.
func Discover(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsModel(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: discover %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}

// IsModel reports whether path names a BMD model.
func IsModel(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".bmd")
}

// Run processes all models using a worker pool. Models not yet started
// when ctx is cancelled are reported as failed with the context error.
func Run(ctx context.Context, cfg Config, models []string) []Result {
	total := len(models)
	results := make([]Result, total)
	var processed atomic.Int64
	workers := max(cfg.Workers, 1)

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						fmt.Printf("  [%d/%d] %.1f models/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results[idx] = Result{Model: models[idx], Error: err.Error()}
				} else {
					results[idx] = ProcessModel(cfg, models[idx])
				}
				processed.Add(1)
			}
		}()
	}

	for i := range models {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

// ProcessModel bakes every sub-mesh of one model and optionally renders
// its tension preview.
func ProcessModel(cfg Config, rel string) Result {
	start := time.Now()
	res := processModel(cfg, rel)
	res.Duration = time.Since(start)

	log := cfg.logger()
	if res.Success {
		log.Debug("baked model", "model", rel, "meshes", len(res.Meshes), "elapsed", res.Duration)
	} else {
		log.Warn("model failed", "model", rel, "err", res.Error)
	}
	return res
}

func processModel(cfg Config, rel string) Result {
	res := Result{Model: rel}
	fail := func(err error) Result {
		res.Error = err.Error()
		return res
	}

	model, err := bmd.Parse(filepath.Join(cfg.ModelDir, rel))
	if err != nil {
		return fail(err)
	}
	if len(model.Meshes) == 0 {
		return fail(fmt.Errorf("no meshes in BMD"))
	}

	meshes, baked, err := BakeModel(cfg, model, rel)
	if err != nil {
		return fail(err)
	}
	res.Meshes = meshes

	if cfg.Preview {
		p := PreviewConfig{
			Visualizer:  cfg.Visualizer,
			Squash:      cfg.Squash,
			Stretch:     cfg.Stretch,
			Action:      cfg.Action,
			Frame:       cfg.Frame,
			TexResolver: cfg.TexResolver,
			RenderSize:  cfg.RenderSize,
			Supersample: cfg.Supersample,
		}
		out := filepath.Join(cfg.OutputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".webp")
		peaks, err := WritePreview(out, model, baked, p)
		if err != nil {
			return fail(err)
		}
		for i := range peaks {
			res.Meshes[i].PeakSquash, res.Meshes[i].PeakStretch = peaks[i][0], peaks[i][1]
		}
		res.Preview = out
	}

	res.Success = true
	return res
}

// BakeModel loads or builds the bake of every sub-mesh of model through
// cfg.Cache. Sub-mesh i is keyed by its rest pose (action 0, frame 0) and
// named rel#i in logs.
func BakeModel(cfg Config, model *bmd.Model, rel string) ([]MeshResult, []*bake.Baked, error) {
	rest, err := skeleton.Pose(model, 0, 0)
	if err != nil {
		return nil, nil, err
	}
	results := make([]MeshResult, len(model.Meshes))
	baked := make([]*bake.Baked, len(model.Meshes))
	for i := range model.Meshes {
		mr, b, err := bakeMesh(cfg, model, rest, rel, i)
		if err != nil {
			return nil, nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		results[i], baked[i] = mr, b
	}
	return results, baked, nil
}

func bakeMesh(cfg Config, model *bmd.Model, rest [][][3]float32, rel string, i int) (MeshResult, *bake.Baked, error) {
	geom := model.Meshes[i].Geometry(fmt.Sprintf("%s#%d", rel, i))
	geom.Positions = rest[i]
	key := Key(geom, cfg.Build.Degenerate)

	b, src, err := cfg.Cache.Load(key, cfg.Mode, func() (*bake.Baked, error) {
		b, _, err := Bake(geom, cfg.Build, cfg.MaxDegreeLimit)
		return b, err
	})
	if err != nil {
		return MeshResult{}, nil, err
	}

	mr := MeshResult{
		Index:     i,
		Vertices:  b.Table.VertexCount(),
		Triangles: geom.TriangleCount(),
		Edges:     b.Table.EdgeCount(),
		MaxDegree: b.Table.MaxDegree(),
		Source:    src.String(),
		BakeFile:  cfg.Cache.Path(key),
	}
	if src == bake.FromBuild {
		// b.Build is set for every caller of a shared build.
		used := b.Build
		mr.Strategy = used.Strategy.String()
		if used.Strategy == edges.Fixed {
			mr.Capacity = used.MaxDegree
			if mr.Capacity <= 0 {
				mr.Capacity = edges.DefaultMaxDegree
			}
		}
		if used.Strategy != cfg.Build.Strategy || used.MaxDegree != cfg.Build.MaxDegree {
			cfg.logger().Info("capacity fallback", "mesh", geom.Name, "strategy", used.Strategy, "capacity", mr.Capacity)
		}
	}
	return mr, b, nil
}
