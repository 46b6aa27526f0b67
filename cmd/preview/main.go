package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tension-tools/internal/bake"
	"tension-tools/internal/batch"
	"tension-tools/internal/bmd"
	"tension-tools/internal/config"
	"tension-tools/internal/logging"
	"tension-tools/internal/mathutil"
	"tension-tools/internal/raster"
	"tension-tools/internal/texture"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json or config.toml")
	outPath := flag.String("out", "", "Output WebP path (default: <model>.webp)")
	action := flag.Int("action", -1, "Animation action")
	frame := flag.Int("frame", -1, "Key frame within the action")
	visualizer := flag.String("visualizer", "", "both, squash, stretch or off")
	size := flag.Int("size", 0, "Output size in pixels (default: 256)")
	yaw := flag.Float64("yaw", 12, "Camera yaw in degrees")
	pitch := flag.Float64("pitch", -15, "Camera pitch in degrees")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: preview [flags] model.bmd")
		os.Exit(2)
	}
	modelPath := flag.Arg(0)

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	flags := config.NoFlags()
	flags.Action, flags.Frame, flags.Visualizer = *action, *frame, *visualizer
	if cfg.ModelDir == "" && cfg.BaseDir == "" {
		flags.ModelDir = filepath.Dir(modelPath)
	}
	cfg.Resolve(flags)
	if *size > 0 {
		cfg.RenderSize = *size
	}
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

	build, _ := cfg.BuildOptions()
	mode, _ := cfg.BakeMode()
	opts, _ := cfg.BakeOptions()
	vis, _ := raster.ParseMode(cfg.Visualizer)

	cache, err := bake.NewCache(cfg.BakeDir, cfg.CacheMB<<20, opts, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	model, err := bmd.Parse(modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	bcfg := batch.Config{
		ModelDir:       cfg.ModelDir,
		Cache:          cache,
		Mode:           mode,
		Build:          build,
		MaxDegreeLimit: cfg.MaxDegreeLimit,
		Log:            log,
	}
	meshes, baked, err := batch.BakeModel(bcfg, model, filepath.Base(modelPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error baking %s: %v\n", modelPath, err)
		os.Exit(1)
	}

	if *outPath == "" {
		*outPath = strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ".webp"
	}
	texIndex := texture.BuildIndex(filepath.Dir(modelPath))
	peaks, err := batch.WritePreview(*outPath, model, baked, batch.PreviewConfig{
		Visualizer:  vis,
		Squash:      cfg.Squash,
		Stretch:     cfg.Stretch,
		Action:      cfg.Action,
		Frame:       cfg.Frame,
		View:        mathutil.OrbitView(*yaw, *pitch),
		TexResolver: texture.NewCache(texIndex),
		RenderSize:  cfg.RenderSize,
		Supersample: cfg.Supersample,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering %s: %v\n", modelPath, err)
		os.Exit(1)
	}

	fmt.Printf("%s: action %d frame %d, %d meshes, %d textures indexed\n",
		model.Name, cfg.Action, cfg.Frame, len(model.Meshes), texIndex.Len())
	for i, m := range meshes {
		fmt.Printf("  Mesh[%d] verts=%d edges=%d bake=%s  squash=%.3f stretch=%.3f\n",
			i, m.Vertices, m.Edges, m.Source, peaks[i][0], peaks[i][1])
	}
	fmt.Printf("Preview: %s\n", *outPath)
}
