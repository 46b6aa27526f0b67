package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"tension-tools/internal/bake"
	"tension-tools/internal/edges"
	"tension-tools/internal/logging"
	"tension-tools/internal/raster"
	"tension-tools/internal/tension"
)

// Config holds all configurable paths, build and render settings.
type Config struct {
	// Paths
	BaseDir   string `json:"base_dir" toml:"base_dir"`
	ModelDir  string `json:"model_dir" toml:"model_dir"`
	BakeDir   string `json:"bake_dir" toml:"bake_dir"`
	OutputDir string `json:"output_dir" toml:"output_dir"`

	// Edge table build
	Strategy       string `json:"strategy" toml:"strategy"`
	MaxDegree      int    `json:"max_degree" toml:"max_degree"`
	MaxDegreeLimit int    `json:"max_degree_limit" toml:"max_degree_limit"`
	Degenerate     string `json:"degenerate" toml:"degenerate"`

	// Bake storage
	Mode        string `json:"mode" toml:"mode"`
	Compression string `json:"compression" toml:"compression"`
	CacheMB     int    `json:"cache_mb" toml:"cache_mb"`

	// Tension response
	Squash  tension.Property `json:"squash" toml:"squash"`
	Stretch tension.Property `json:"stretch" toml:"stretch"`

	// Render settings
	Preview     bool   `json:"preview" toml:"preview"`
	Visualizer  string `json:"visualizer" toml:"visualizer"`
	Action      int    `json:"action" toml:"action"`
	Frame       int    `json:"frame" toml:"frame"`
	RenderSize  int    `json:"render_size" toml:"render_size"`
	Supersample int    `json:"supersample" toml:"supersample"`
	Workers     int    `json:"workers" toml:"workers"`

	// Watch mode
	DebounceMS int `json:"debounce_ms" toml:"debounce_ms"`

	// Logging
	LogLevel   string `json:"log_level" toml:"log_level"`
	LogFile    string `json:"log_file" toml:"log_file"`
	MaxLogSize int    `json:"max_log_size" toml:"max_log_size"` // megabytes
	MaxLogAge  int    `json:"max_log_age" toml:"max_log_age"`   // days
}

// Load reads a JSON or TOML (by .toml extension) config file.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.ModelDir != "" {
		c.ModelDir = flags.ModelDir
	}
	if flags.BakeDir != "" {
		c.BakeDir = flags.BakeDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Strategy != "" {
		c.Strategy = flags.Strategy
	}
	if flags.MaxDegree > 0 {
		c.MaxDegree = flags.MaxDegree
	}
	if flags.Mode != "" {
		c.Mode = flags.Mode
	}
	if flags.Visualizer != "" {
		c.Visualizer = flags.Visualizer
	}
	if flags.Preview {
		c.Preview = true
	}
	if flags.Action >= 0 {
		c.Action = flags.Action
	}
	if flags.Frame >= 0 {
		c.Frame = flags.Frame
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	// Auto-detect base dir if still empty
	if c.BaseDir == "" && c.ModelDir == "" {
		c.BaseDir = detectBaseDir()
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		c.ModelDir = under(c.BaseDir, c.ModelDir, "Data")
		c.BakeDir = under(c.BaseDir, c.BakeDir, filepath.Join("Data", "Baked"))
		c.OutputDir = under(c.BaseDir, c.OutputDir, filepath.Join("Data", "Tension-previews"))
	}
	if c.ModelDir != "" {
		if c.BakeDir == "" {
			c.BakeDir = filepath.Join(c.ModelDir, "baked")
		}
		if c.OutputDir == "" {
			c.OutputDir = filepath.Join(c.ModelDir, "previews")
		}
	}

	// Defaults for build settings
	if c.Strategy == "" {
		c.Strategy = edges.Fixed.String()
	}
	if c.MaxDegree <= 0 {
		c.MaxDegree = edges.DefaultMaxDegree
	}
	if c.MaxDegreeLimit < c.MaxDegree {
		c.MaxDegreeLimit = max(256, c.MaxDegree)
	}
	if c.Degenerate == "" {
		c.Degenerate = edges.DegenerateKeep.String()
	}
	if c.Mode == "" {
		c.Mode = bake.ModeBaked.String()
	}
	if c.Compression == "" {
		c.Compression = bake.Zstd.String()
	}
	if c.CacheMB <= 0 {
		c.CacheMB = 64
	}

	// An untouched property means the default linear response
	if c.Squash == (tension.Property{}) {
		c.Squash = tension.DefaultProperty()
	}
	if c.Stretch == (tension.Property{}) {
		c.Stretch = tension.DefaultProperty()
	}
	c.Squash = c.Squash.Clamped()
	c.Stretch = c.Stretch.Clamped()

	// Defaults for render settings
	if c.Visualizer == "" {
		c.Visualizer = raster.ModeBoth.String()
	}
	if c.Action < 0 {
		c.Action = 0
	}
	if c.Frame < 0 {
		c.Frame = 0
	}
	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.DebounceMS <= 0 {
		c.DebounceMS = 250
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaxLogSize <= 0 {
		c.MaxLogSize = 100
	}
	if c.MaxLogAge <= 0 {
		c.MaxLogAge = 7
	}
}

// Validate checks every enumerated setting. Call after Resolve.
func (c *Config) Validate() error {
	if c.ModelDir == "" {
		return fmt.Errorf("config: no model directory (set model_dir or -models)")
	}
	if _, err := c.BuildOptions(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.BakeMode(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.BakeOptions(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := raster.ParseMode(c.Visualizer); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// BuildOptions converts the build settings into edge table options.
// Bakes are always stored in canonical neighbor order.
func (c *Config) BuildOptions() (edges.Options, error) {
	s, err := edges.ParseStrategy(c.Strategy)
	if err != nil {
		return edges.Options{}, err
	}
	d, err := edges.ParseDegeneratePolicy(c.Degenerate)
	if err != nil {
		return edges.Options{}, err
	}
	return edges.Options{Strategy: s, MaxDegree: c.MaxDegree, Degenerate: d, Canonical: true}, nil
}

func (c *Config) BakeMode() (bake.Mode, error) {
	return bake.ParseMode(c.Mode)
}

func (c *Config) BakeOptions() (bake.Options, error) {
	comp, err := bake.ParseCompression(c.Compression)
	if err != nil {
		return bake.Options{}, err
	}
	return bake.Options{Compression: comp, Checksum: bake.CRC32}, nil
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, File: c.LogFile, MaxSize: c.MaxLogSize, MaxAge: c.MaxLogAge}
}

// Flags holds CLI flag values that override config file settings.
// Action and Frame use -1 for "not set".
type Flags struct {
	ModelDir   string
	BakeDir    string
	OutputDir  string
	Strategy   string
	MaxDegree  int
	Mode       string
	Visualizer string
	Preview    bool
	Action     int
	Frame      int
	Workers    int
	LogLevel   string
}

// NoFlags is a Flags value that overrides nothing.
func NoFlags() Flags {
	return Flags{Action: -1, Frame: -1}
}

func under(base, p, def string) string {
	if p == "" {
		return filepath.Join(base, def)
	}
	if !filepath.IsAbs(p) {
		return filepath.Join(base, p)
	}
	return p
}

func detectBaseDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if isDir(filepath.Join(base, "Data")) {
				return base
			}
		}
	}

	// Try current working directory, then its parent
	cwd, _ := os.Getwd()
	for _, base := range []string{cwd, filepath.Dir(cwd)} {
		if isDir(filepath.Join(base, "Data")) {
			return base
		}
	}

	return ""
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}
