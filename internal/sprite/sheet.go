package sprite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/planner"
)

// decodeFunc loads a frame image from disk. Tests swap it to inject
// decode failures at a chosen index.
var decodeFunc = func(path string) (image.Image, error) {
	return imaging.Open(path)
}

// Compose decodes every frame and draws it into its grid cell. Frames whose
// bounds differ from the cell are resized first. Decoding runs on at most
// workers goroutines; each goroutine writes only its own cell's rectangle.
//
// On failure the returned error is a PackingError for the lowest failing
// index, independent of goroutine scheduling.
func Compose(ctx context.Context, grid Grid, frames []planner.Frame, workers int) (*image.NRGBA, error) {
	if workers < 1 {
		workers = 1
	}
	sheet := imaging.New(grid.Width(), grid.Height(), color.NRGBA{A: 0xff})

	// Siblings are not canceled on failure: every cell is attempted so the
	// lowest failing index is always the one reported.
	errs := make([]error, len(frames))
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range frames {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			if err := drawFrame(sheet, grid.Cell(i), frames[i].Path); err != nil {
				errs[i] = err
				return err
			}
			return nil
		})
	}
	waitErr := g.Wait()
	if waitErr == nil {
		return sheet, nil
	}

	// Parent cancellation wins over per-cell errors it caused.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		return nil, &failure.PackingError{Index: i, Op: "decode " + frames[i].Path, Err: err}
	}
	return nil, &failure.PackingError{Index: -1, Op: "compose", Err: waitErr}
}

func drawFrame(dst *image.NRGBA, cell Region, path string) error {
	img, err := decodeFunc(path)
	if err != nil {
		return err
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())
	}
	if b.Dx() != cell.W || b.Dy() != cell.H {
		img = imaging.Resize(img, cell.W, cell.H, imaging.Lanczos)
		b = img.Bounds()
	}
	draw.Draw(dst, cell.Rect(), img, b.Min, draw.Src)
	return nil
}

// EncodePNG renders the sheet to PNG bytes. The encoder is deterministic,
// so identical pixels give identical bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
