package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/logging"
	"github.com/backmassage/thumbvtt/internal/naming"
	"github.com/backmassage/thumbvtt/internal/planner"
	"github.com/backmassage/thumbvtt/internal/sprite"
)

// Generator runs the per-video pipeline against its collaborators.
type Generator struct {
	Metadata MetadataProvider
	Sampler  FrameSampler
	Log      *logging.Logger // optional
	Progress Progress        // optional
}

// Generate produces the sheet and VTT for input. Options are validated
// before any collaborator is called; every failure aborts the whole video
// and nothing is written under the final output names.
func (g *Generator) Generate(ctx context.Context, input string, opts Options) (*Result, error) {
	if err := validate(input, opts); err != nil {
		return nil, err
	}
	log := g.logger()

	// --- Probe ---
	meta, err := g.Metadata.Probe(ctx, input)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !failure.IsMedia(err) {
			err = &failure.MediaError{Path: input, Err: err}
		}
		return nil, err
	}
	log.Debug("metadata: %.3fs %s fps=%.3f", meta.Duration, meta.Resolution(), meta.FPS)

	// --- Plan ---
	plan, err := planner.BuildPlan(opts.Policy, opts.Size, meta)
	if err != nil {
		return nil, err
	}
	if err := checkWithinDuration(plan); err != nil {
		return nil, err
	}
	if plan.IsEmpty() {
		return nil, &failure.PackingError{Index: -1, Op: "layout", Err: sprite.ErrNoThumbnails}
	}

	art := naming.ForVideo(input, opts.OutputDir)
	if opts.BaseName != "" {
		art.Base = opts.BaseName
	}
	grid := sprite.NewGrid(plan.Len(), plan.Size, opts.Columns)
	res := &Result{Input: input, Metadata: meta, Plan: plan, Grid: grid}
	log.Debug("plan: %d thumbnails (%s) at %s, %s", plan.Len(), plan.Policy, plan.Size, grid)

	if opts.DryRun {
		res.DryRun = true
		res.SheetPath = art.SheetPath()
		res.VTTPath = art.VTTPath()
		return res, nil
	}

	// --- Sample ---
	res.RunID = uuid.NewString()
	log = log.WithField("run", res.RunID)
	workRoot := opts.WorkRoot
	if workRoot == "" {
		workRoot = os.TempDir()
	}
	workDir := filepath.Join(workRoot, "thumbvtt-"+res.RunID)
	defer os.RemoveAll(workDir)

	if g.Progress != nil {
		g.Progress.Begin(filepath.Base(input), plan.Len())
	}
	frames, err := g.Sampler.Sample(ctx, input, plan.Timemarks, plan.Size, workDir)
	if g.Progress != nil {
		g.Progress.End()
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !failure.IsSampling(err) {
			err = &failure.SamplingError{Index: -1, Err: err}
		}
		return nil, err
	}

	// --- Pack ---
	packed, err := sprite.Pack(ctx, plan, frames, sprite.Options{
		OutputDir: opts.OutputDir,
		BaseName:  art.Base,
		Columns:   opts.Columns,
		Workers:   opts.Workers,
	})
	if err != nil {
		return nil, err
	}
	res.SheetPath = packed.SheetPath
	res.VTTPath = packed.VTTPath
	res.SheetBytes = packed.SheetBytes
	res.Thumbnails = packed.Thumbnails
	res.Grid = packed.Grid

	if opts.KeepFrames {
		dst := art.FramesDir()
		if err := keepFrames(workDir, dst, frames); err != nil {
			log.Warn("Could not keep frames in %s: %v", dst, err)
		} else {
			res.FramesDir = dst
		}
	}
	return res, nil
}

// validate checks the options that must hold before any collaborator runs.
func validate(input string, opts Options) error {
	if input == "" {
		return failure.Config("inputVideo", "input video path is required")
	}
	if err := opts.Policy.Validate(); err != nil {
		return err
	}
	if opts.OutputDir == "" {
		return failure.Config("outputDir", "output directory is required")
	}
	if opts.Columns < 0 {
		return failure.Config("columns", "must not be negative (got %d)", opts.Columns)
	}
	return nil
}

// checkWithinDuration rejects explicit timemarks at or past the end of the
// video: no frame exists there to sample.
func checkWithinDuration(plan *planner.SamplingPlan) error {
	if plan.Policy != planner.PolicyExplicit || plan.IsEmpty() {
		return nil
	}
	last := plan.Timemarks[plan.Len()-1]
	if last.Offset >= plan.Duration {
		return failure.Config("timemarks", "timemark %ss is not before the video end (%.3fs)", last.Formatted, plan.Duration)
	}
	return nil
}

func (g *Generator) logger() *logging.Logger {
	if g.Log != nil {
		return g.Log
	}
	return discardLogger
}

var discardLogger = logging.Discard()
