package sprite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/fsx"
	"github.com/backmassage/thumbvtt/internal/planner"
)

// ErrNoThumbnails is wrapped in the PackingError returned for an empty plan.
var ErrNoThumbnails = errors.New("plan has no thumbnails")

// Options controls where and how the sheet is written.
type Options struct {
	OutputDir string
	BaseName  string // output files are <BaseName>.png and <BaseName>.vtt
	Columns   int    // 0 = near-square layout
	Workers   int    // concurrent frame decodes; <1 means 1
}

// SheetName is the sheet's file name (no directory).
func (o Options) SheetName() string { return o.BaseName + ".png" }

// VTTName is the cue file's name (no directory).
func (o Options) VTTName() string { return o.BaseName + ".vtt" }

// Thumbnail describes one cell of a written sheet.
type Thumbnail struct {
	Index     int
	Offset    float64
	Start     float64
	End       float64
	Region    Region
	SheetPath string
}

// Result is what Pack wrote.
type Result struct {
	SheetPath  string
	VTTPath    string
	Grid       Grid
	Cues       []Cue
	Thumbnails []Thumbnail
	SheetBytes int
}

// Pack composes frames into one sheet image and writes it next to a WebVTT
// file whose cues map each plan interval to its cell.
//
// Both outputs are rendered in memory before anything touches the output
// directory, then staged and renamed into place as a pair. A failed Pack
// leaves whatever sheet and VTT were there before untouched.
func Pack(ctx context.Context, plan *planner.SamplingPlan, frames []planner.Frame, opts Options) (*Result, error) {
	if plan == nil || plan.IsEmpty() {
		return nil, &failure.PackingError{Index: -1, Op: "layout", Err: ErrNoThumbnails}
	}
	if opts.BaseName == "" {
		return nil, &failure.PackingError{Index: -1, Op: "layout", Err: errors.New("empty base name")}
	}
	if err := matchFrames(plan, frames); err != nil {
		return nil, err
	}

	grid := NewGrid(plan.Len(), plan.Size, opts.Columns)
	img, err := Compose(ctx, grid, frames, opts.Workers)
	if err != nil {
		return nil, err
	}
	sheetData, err := EncodePNG(img)
	if err != nil {
		return nil, &failure.PackingError{Index: -1, Op: "encode sheet", Err: err}
	}
	cues := BuildCues(plan, grid, opts.SheetName())
	vttData := RenderVTT(cues)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sheetPath := filepath.Join(opts.OutputDir, opts.SheetName())
	vttPath := filepath.Join(opts.OutputDir, opts.VTTName())

	err = fsx.WriteFilesAtomic(opts.OutputDir,
		fsx.File{Name: opts.SheetName(), Data: sheetData},
		fsx.File{Name: opts.VTTName(), Data: vttData},
	)
	if err != nil {
		return nil, &failure.PackingError{Index: -1, Op: "write outputs", Err: err}
	}

	thumbs := make([]Thumbnail, len(cues))
	for i, c := range cues {
		thumbs[i] = Thumbnail{
			Index:     i,
			Offset:    plan.Timemarks[i].Offset,
			Start:     c.Start,
			End:       c.End,
			Region:    c.Region,
			SheetPath: sheetPath,
		}
	}
	return &Result{
		SheetPath:  sheetPath,
		VTTPath:    vttPath,
		Grid:       grid,
		Cues:       cues,
		Thumbnails: thumbs,
		SheetBytes: len(sheetData),
	}, nil
}

func matchFrames(plan *planner.SamplingPlan, frames []planner.Frame) error {
	if len(frames) != plan.Len() {
		return &failure.PackingError{
			Index: -1,
			Op:    "match frames",
			Err:   fmt.Errorf("have %d frames for %d timemarks", len(frames), plan.Len()),
		}
	}
	for i, f := range frames {
		if f.Timemark.Index != i {
			return &failure.PackingError{
				Index: i,
				Op:    "match frames",
				Err:   fmt.Errorf("frame carries timemark %d", f.Timemark.Index),
			}
		}
	}
	return nil
}
