package pipeline

import (
	"context"

	"github.com/backmassage/thumbvtt/internal/config"
	"github.com/backmassage/thumbvtt/internal/planner"
	"github.com/backmassage/thumbvtt/internal/probe"
	"github.com/backmassage/thumbvtt/internal/sprite"
)

// MetadataProvider reads duration, dimensions, and frame rate of a video.
// Failures are reported as *failure.MediaError.
type MetadataProvider interface {
	Probe(ctx context.Context, path string) (probe.VideoMetadata, error)
}

// FrameSampler writes one image per timemark into workDir and returns them
// paired with their timemarks, in plan order. Failures are reported as
// *failure.SamplingError naming the failing index.
type FrameSampler interface {
	Sample(ctx context.Context, path string, marks []planner.Timemark, size planner.ThumbnailSize, workDir string) ([]planner.Frame, error)
}

// Progress receives frame sampling progress. Advance may be called from
// several goroutines.
type Progress interface {
	Begin(label string, total int)
	Advance()
	End()
}

// Options configures one Generate call. It is passed by value and never
// modified by the pipeline.
type Options struct {
	OutputDir string
	BaseName  string // output stem; default is the video's basename
	Policy    planner.SamplingPolicy
	Size      planner.SizePolicy
	Columns   int
	Workers   int // sheet decode concurrency

	KeepFrames bool
	DryRun     bool
	WorkRoot   string // parent of per-run work dirs; default os.TempDir()
}

// NewOptions derives per-video options from the runtime config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		OutputDir:  cfg.OutputDir,
		Policy:     cfg.Policy(),
		Size:       cfg.SizePolicy(),
		Columns:    cfg.Columns,
		Workers:    cfg.Workers,
		KeepFrames: cfg.KeepFrames,
		DryRun:     cfg.DryRun,
	}
}

// Result describes what Generate produced for one video. For a dry run
// only Metadata, Plan, and Grid are set.
type Result struct {
	Input    string
	RunID    string
	Metadata probe.VideoMetadata
	Plan     *planner.SamplingPlan
	Grid     sprite.Grid

	SheetPath  string
	VTTPath    string
	SheetBytes int
	Thumbnails []sprite.Thumbnail
	FramesDir  string // set when frames were kept
	DryRun     bool
}
