package config

// This file registers CLI flags on a pflag.FlagSet (owned by the cobra root
// command) and applies the values that need post-processing: negated flags
// and the two positional arguments.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// FlagState holds flag values that are applied to Config after Parse,
// so Config defaults hold unless the user passes the flag.
type FlagState struct {
	noProgress bool
	forceColor bool
	noColor    bool
}

// BindFlags registers every run flag on fs, writing directly into cfg
// where no post-processing is needed.
func BindFlags(fs *pflag.FlagSet, cfg *Config) *FlagState {
	s := &FlagState{}
	defineSamplingFlags(fs, cfg)
	defineGeometryFlags(fs, cfg)
	defineExecutionFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg)
	BindDisplayFlags(fs, cfg, s)
	return s
}

// defineSamplingFlags registers the three mutually exclusive policies.
func defineSamplingFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.Float64VarP(&cfg.SecondsPerThumbnail, "seconds", "s", 0, "One thumbnail every N seconds")
	fs.IntVarP(&cfg.FramesPerThumbnail, "frames", "F", 0, "One thumbnail every N frames (needs a known frame rate)")
	fs.Float64SliceVarP(&cfg.Timemarks, "timemarks", "t", nil, "Explicit offsets in seconds, comma separated")
}

// defineGeometryFlags registers -W/--width, -H/--height, --columns.
func defineGeometryFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVarP(&cfg.Width, "width", "W", 0, "Thumbnail width (height follows aspect ratio if unset)")
	fs.IntVarP(&cfg.Height, "height", "H", 0, "Thumbnail height (width follows aspect ratio if unset)")
	fs.IntVar(&cfg.Columns, "columns", 0, "Fixed sheet column count (default: near-square)")
}

// defineExecutionFlags registers -j/--workers and --backend.
func defineExecutionFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Concurrent frame extractions")
	fs.Var(&backendValue{&cfg.Backend}, "backend", "Frame sampler: ffmpeg | mpeg1")
}

// defineBehaviorFlags registers keep-frames, skip-existing, dry-run, upload.
func defineBehaviorFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.KeepFrames, "keep-frames", false, "Keep individual frames next to the sheet")
	fs.BoolVar(&cfg.SkipExisting, "skip-existing", false, "Skip videos whose sheet and VTT already exist")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "d", false, "Plan only; do not extract or write anything")
	fs.BoolVar(&cfg.Upload, "upload", false, "Upload sheet and VTT to S3 (THUMBVTT_S3_* settings)")
}

// BindDisplayFlags registers --no-progress, --color, --no-color, verbose,
// --log. The check subcommand registers these too.
func BindDisplayFlags(fs *pflag.FlagSet, cfg *Config, s *FlagState) {
	fs.BoolVar(&s.noProgress, "no-progress", false, "Disable the progress bar")
	fs.BoolVar(&s.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&s.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	fs.StringVarP(&cfg.LogFile, "log", "l", cfg.LogFile, "Append logs to file")
}

// ApplyDisplay copies the negated display flags into cfg.
func (s *FlagState) ApplyDisplay(cfg *Config) {
	if s.noProgress {
		cfg.ShowProgress = false
	}
	if s.noColor {
		cfg.ColorMode = ColorNever
	} else if s.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// Apply copies negated flag values into cfg and sets Input and OutputDir
// from the positional args. CheckOnly configs take no positional args.
func (s *FlagState) Apply(cfg *Config, args []string) error {
	s.ApplyDisplay(cfg)

	if cfg.CheckOnly {
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("need exactly <input> and <output_dir> (got %d args)", len(args))
	}
	cfg.Input = NormalizeDirArg(args[0])
	cfg.OutputDir = NormalizeDirArg(args[1])
	return nil
}

// pflag.Value adapter so the Backend enum can be used with fs.Var.

type backendValue struct{ p *Backend }

func (b *backendValue) String() string { return string(*b.p) }
func (b *backendValue) Type() string   { return "backend" }
func (b *backendValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "ffmpeg":
		*b.p = BackendFFmpeg
	case "mpeg1":
		*b.p = BackendMPEG1
	default:
		return fmt.Errorf("invalid backend %q (use 'ffmpeg' or 'mpeg1')", s)
	}
	return nil
}
