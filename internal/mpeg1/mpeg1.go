// Package mpeg1 is a pure-Go backend for MPEG-1 program streams (.mpg).
// It provides both pipeline collaborators, metadata and frame sampling,
// without spawning ffmpeg or ffprobe.
package mpeg1

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/mpeg"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/planner"
	"github.com/backmassage/thumbvtt/internal/probe"
)

// ErrNoHeaders is reported when the file is not an MPEG-1 program stream
// with a video sequence header.
var ErrNoHeaders = errors.New("not an MPEG-1 video stream")

// Extensions handled by this backend.
var Extensions = []string{".mpg", ".mpeg", ".m1v"}

// Supports reports whether path has an MPEG-1 extension.
func Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// decoder owns one open file and its MPEG demuxer/decoder. Decoders are
// not safe for concurrent use.
type decoder struct {
	f   *os.File
	mpg *mpeg.MPEG
}

func open(path string) (*decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	mpg, err := mpeg.New(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if !mpg.HasHeaders() {
		f.Close()
		return nil, ErrNoHeaders
	}
	mpg.SetAudioEnabled(false)
	return &decoder{f: f, mpg: mpg}, nil
}

func (d *decoder) Close() error { return d.f.Close() }

// Provider reads video metadata from the MPEG-1 sequence header.
type Provider struct{}

// Probe implements the pipeline's metadata provider. Every failure is a
// *failure.MediaError.
func (Provider) Probe(ctx context.Context, path string) (probe.VideoMetadata, error) {
	if err := ctx.Err(); err != nil {
		return probe.VideoMetadata{}, err
	}
	d, err := open(path)
	if err != nil {
		return probe.VideoMetadata{}, &failure.MediaError{Path: path, Err: err}
	}
	defer d.Close()

	meta := probe.VideoMetadata{
		Duration: d.mpg.Duration().Seconds(),
		Width:    d.mpg.Width(),
		Height:   d.mpg.Height(),
		FPS:      d.mpg.Framerate(),
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return probe.VideoMetadata{}, &failure.MediaError{Path: path, Err: probe.ErrNoVideoStream}
	}
	return meta, nil
}

// Sampler decodes frames in-process. Timemarks are split into contiguous
// runs, one decoder per run, so each decoder only ever seeks forward.
type Sampler struct {
	Workers int
	OnFrame func(index int)
}

// Sample implements the pipeline's frame sampler. On failure the error is a
// *failure.SamplingError for the lowest failing index.
func (s *Sampler) Sample(ctx context.Context, path string, marks []planner.Timemark, size planner.ThumbnailSize, workDir string) ([]planner.Frame, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	paths := make([]string, len(marks))
	errs := make([]error, len(marks))
	g, gctx := errgroup.WithContext(ctx)
	for _, run := range splitRuns(len(marks), s.Workers) {
		run := run
		g.Go(func() error {
			d, err := open(path)
			if err != nil {
				errs[run[0]] = err
				return err
			}
			defer d.Close()

			for i := run[0]; i < run[1]; i++ {
				if err := gctx.Err(); err != nil {
					errs[i] = err
					return err
				}
				out := filepath.Join(workDir, fmt.Sprintf("frame-%05d.png", i))
				if err := d.grab(marks[i].Offset, size, out); err != nil {
					errs[i] = err
					return err
				}
				paths[i] = out
				if s.OnFrame != nil {
					s.OnFrame(i)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		for i, e := range errs {
			if e == nil || errors.Is(e, context.Canceled) {
				continue
			}
			return nil, &failure.SamplingError{Index: i, Offset: marks[i].Offset, Err: e}
		}
		return nil, err
	}
	return planner.PairFrames(marks, paths)
}

func (d *decoder) grab(offset float64, size planner.ThumbnailSize, out string) error {
	at := time.Duration(offset * float64(time.Second))
	frame := d.mpg.SeekFrame(at, true)
	if frame == nil {
		return fmt.Errorf("no frame at %.3fs", offset)
	}
	img := imaging.Resize(frame.YCbCr(), size.Width, size.Height, imaging.Lanczos)
	return imaging.Save(img, out)
}

// splitRuns divides n indexes into at most workers contiguous [start, end)
// runs of near-equal length.
func splitRuns(n, workers int) [][2]int {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	runs := make([][2]int, 0, workers)
	for w := 0; w < workers; w++ {
		start := w * n / workers
		end := (w + 1) * n / workers
		if end > start {
			runs = append(runs, [2]int{start, end})
		}
	}
	return runs
}
