package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"tension-tools/internal/bake"
	"tension-tools/internal/batch"
	"tension-tools/internal/config"
	"tension-tools/internal/logging"
	"tension-tools/internal/raster"
	"tension-tools/internal/texture"
	"tension-tools/internal/watch"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json or config.toml")
	testN := flag.Int("test", 0, "Bake only the first N models")
	modelDir := flag.String("models", "", "Model directory (default: Data)")
	bakeDir := flag.String("bakes", "", "Bake output directory (default: Data/Baked)")
	outputDir := flag.String("output", "", "Preview output directory (default: Data/Tension-previews)")
	strategy := flag.String("strategy", "", "Edge set strategy: fixed or hashset (default: fixed)")
	maxDegree := flag.Int("max-degree", 0, "Initial per-vertex capacity of the fixed strategy (default: 16)")
	mode := flag.String("mode", "", "Bake mode: baked or on_awake (default: baked)")
	preview := flag.Bool("preview", false, "Render a tension preview per model")
	visualizer := flag.String("visualizer", "", "Preview colors: both, squash, stretch or off")
	action := flag.Int("action", -1, "Animation action of the preview pose")
	frame := flag.Int("frame", -1, "Key frame of the preview pose")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	watchMode := flag.Bool("watch", false, "Keep running and re-bake models as they change")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		ModelDir:   *modelDir,
		BakeDir:    *bakeDir,
		OutputDir:  *outputDir,
		Strategy:   *strategy,
		MaxDegree:  *maxDegree,
		Mode:       *mode,
		Visualizer: *visualizer,
		Preview:    *preview,
		Action:     *action,
		Frame:      *frame,
		Workers:    *workers,
		LogLevel:   *logLevel,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logging.New(cfg.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	bcfg, err := batchConfig(&cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	models, err := batch.Discover(cfg.ModelDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *testN > 0 && *testN < len(models) {
		models = models[:*testN]
	}

	fmt.Println("Tension bake: edge tables and rest deltas")
	fmt.Printf("Models: %d, Strategy: %s, Mode: %s, Workers: %d\n", len(models), cfg.Strategy, cfg.Mode, cfg.Workers)
	fmt.Printf("Bakes: %s\n", cfg.BakeDir)
	if cfg.Preview {
		fmt.Printf("Previews: %s (%s)\n", cfg.OutputDir, cfg.Visualizer)
	}
	fmt.Println("------------------------------------------------------------")

	failed := 0
	if len(models) > 0 {
		failed = bakeAll(ctx, &cfg, bcfg, models)
	} else {
		fmt.Println("No models to bake.")
	}

	if *watchMode {
		fmt.Printf("Watching %s (Ctrl+C to stop)\n", cfg.ModelDir)
		if err := watchModels(ctx, &cfg, bcfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func batchConfig(cfg *config.Config, log *slog.Logger) (batch.Config, error) {
	build, err := cfg.BuildOptions()
	if err != nil {
		return batch.Config{}, err
	}
	mode, err := cfg.BakeMode()
	if err != nil {
		return batch.Config{}, err
	}
	opts, err := cfg.BakeOptions()
	if err != nil {
		return batch.Config{}, err
	}
	vis, err := raster.ParseMode(cfg.Visualizer)
	if err != nil {
		return batch.Config{}, err
	}
	cache, err := bake.NewCache(cfg.BakeDir, cfg.CacheMB<<20, opts, log)
	if err != nil {
		return batch.Config{}, err
	}

	bc := batch.Config{
		ModelDir:       cfg.ModelDir,
		OutputDir:      cfg.OutputDir,
		Cache:          cache,
		Mode:           mode,
		Build:          build,
		MaxDegreeLimit: cfg.MaxDegreeLimit,
		Preview:        cfg.Preview,
		Visualizer:     vis,
		Squash:         cfg.Squash,
		Stretch:        cfg.Stretch,
		Action:         cfg.Action,
		Frame:          cfg.Frame,
		RenderSize:     cfg.RenderSize,
		Supersample:    cfg.Supersample,
		Workers:        cfg.Workers,
		Progress:       true,
		Log:            log,
	}
	if cfg.Preview {
		texIndex := texture.BuildIndex(cfg.ModelDir)
		bc.TexResolver = texture.NewCache(texIndex)
		fmt.Printf("Textures: %d indexed\n", texIndex.Len())
	}
	return bc, nil
}

func bakeAll(ctx context.Context, cfg *config.Config, bcfg batch.Config, models []string) int {
	start := time.Now()
	results := batch.Run(ctx, bcfg, models)
	elapsed := time.Since(start)

	summary := batch.Summarize(results, cfg.Strategy, elapsed)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())
	fmt.Println(summary)

	var errors []batch.Result
	for _, r := range results {
		if !r.Success {
			errors = append(errors, r)
		}
	}
	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(errors))
		for _, e := range errors[:min(len(errors), 20)] {
			fmt.Printf("  %s: %s\n", e.Model, e.Error)
		}
	}

	manifestPath := filepath.Join(cfg.BakeDir, "manifest.json")
	m := batch.Manifest{
		Generated: time.Now().UTC(),
		ModelDir:  cfg.ModelDir,
		Mode:      cfg.Mode,
		Strategy:  cfg.Strategy,
		Models:    results,
		Cache:     bcfg.Cache.Stats(),
		Summary:   summary,
	}
	if err := batch.WriteManifest(manifestPath, m); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}
	return len(errors)
}

func watchModels(ctx context.Context, cfg *config.Config, bcfg batch.Config) error {
	w, err := watch.New(cfg.ModelDir, time.Duration(cfg.DebounceMS)*time.Millisecond, batch.IsModel, bcfg.Log)
	if err != nil {
		return err
	}
	// A changed file may have new topology under the same name, so each
	// event re-bakes the model from scratch.
	bcfg.Mode = bake.ModeOnAwake
	return w.Run(ctx, func(path string) {
		rel, err := filepath.Rel(cfg.ModelDir, path)
		if err != nil {
			return
		}
		r := batch.ProcessModel(bcfg, rel)
		if !r.Success {
			fmt.Printf("  %s: %s\n", rel, r.Error)
			return
		}
		fmt.Printf("  re-baked %s (%d meshes, %s)\n", rel, len(r.Meshes), r.Duration.Round(time.Millisecond))
	})
}
