// Package config holds runtime configuration: defaults, environment
// overrides, CLI flag parsing, and validation.
package config

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/planner"
)

// --- Enum types for validated string fields ---

// Backend selects how frames are sampled from the video.
type Backend string

const (
	BackendFFmpeg Backend = "ffmpeg" // Spawn ffmpeg per timemark (default, any container).
	BackendMPEG1  Backend = "mpeg1"  // Pure-Go decoder; MPEG-1 program streams only.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// S3Config holds the object storage target used by --upload.
type S3Config struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET"`
	Prefix    string `env:"PREFIX"`
	UseSSL    bool   `env:"USE_SSL"`
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then [LoadEnv], then the CLI flags, before being passed (by pointer) to
// packages that need it.
type Config struct {
	// Paths (set from positional args). Input may be a file or a directory.
	Input     string
	OutputDir string

	// Sampling policy. Exactly one must be set.
	SecondsPerThumbnail float64
	FramesPerThumbnail  int
	Timemarks           []float64

	// Thumbnail geometry. Zero means "derive from the video".
	Width   int
	Height  int
	Columns int // 0 = near-square sheet

	// Execution.
	Backend     Backend
	Workers     int    `env:"THUMBVTT_WORKERS"` // Default: NumCPU, capped at 8.
	FFmpegPath  string `env:"THUMBVTT_FFMPEG"`  // Default: "ffmpeg".
	FFprobePath string `env:"THUMBVTT_FFPROBE"` // Default: "ffprobe".

	// Behavior flags.
	DryRun       bool
	SkipExisting bool
	KeepFrames   bool // Keep extracted frames under <out>/<base>_frames/.

	// Display and logging.
	Verbose      bool
	ShowProgress bool      // Default: true. Cleared by --no-progress.
	ColorMode    ColorMode // Default: "auto".
	LogFile      string    `env:"THUMBVTT_LOG"`
	CheckOnly    bool      // Set by the check subcommand.

	// Publishing.
	Upload bool
	S3     S3Config `envPrefix:"THUMBVTT_S3_"`
}

// DefaultConfig returns a Config with defaults applied. Used as the base
// before [LoadEnv] and the CLI flags apply overrides.
func DefaultConfig() Config {
	return Config{
		Backend:      BackendFFmpeg,
		Workers:      defaultWorkers(),
		FFmpegPath:   "ffmpeg",
		FFprobePath:  "ffprobe",
		ShowProgress: true,
		ColorMode:    ColorAuto,
		S3:           S3Config{UseSSL: true},
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Policy returns the sampling policy described by the config.
func (c *Config) Policy() planner.SamplingPolicy {
	return planner.SamplingPolicy{
		SecondsPerThumbnail: c.SecondsPerThumbnail,
		FramesPerThumbnail:  c.FramesPerThumbnail,
		Timemarks:           c.Timemarks,
	}
}

// SizePolicy returns the requested thumbnail size.
func (c *Config) SizePolicy() planner.SizePolicy {
	return planner.SizePolicy{Width: c.Width, Height: c.Height}
}

// Validate checks enum fields, numeric ranges, and the sampling policy.
// When not in CheckOnly mode it also requires the input and output paths.
// Every failure is a *failure.ConfigError.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFFmpeg, BackendMPEG1:
		// valid
	default:
		return failure.Config("backend", "invalid backend %q (use 'ffmpeg' or 'mpeg1')", c.Backend)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return failure.Config("color", "invalid color mode %q", c.ColorMode)
	}

	if c.Workers < 1 {
		return failure.Config("workers", "must be at least 1 (got %d)", c.Workers)
	}

	if c.CheckOnly {
		return nil
	}

	if c.Width < 0 || c.Height < 0 {
		return failure.Config("thumbnailSize", "dimensions must be positive (got %dx%d)", c.Width, c.Height)
	}
	if c.Columns < 0 {
		return failure.Config("columns", "must not be negative (got %d)", c.Columns)
	}
	if err := c.Policy().Validate(); err != nil {
		return err
	}
	if c.Input == "" {
		return failure.Config("inputVideo", "input path is required")
	}
	if c.OutputDir == "" {
		return failure.Config("outputDir", "output directory is required")
	}
	if c.Upload && (c.S3.Endpoint == "" || c.S3.Bucket == "") {
		return failure.Config("upload", "THUMBVTT_S3_ENDPOINT and THUMBVTT_S3_BUCKET must be set")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or
// equal to) a resolved input directory, so kept frames and sheets are never
// rediscovered as inputs. Both arguments must be absolute, symlink-resolved
// paths. It is only meaningful for directory inputs.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return failure.Config("outputDir", "output directory must not be inside input directory")
	}
	return nil
}
