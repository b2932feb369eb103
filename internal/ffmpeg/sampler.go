package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/logging"
	"github.com/backmassage/thumbvtt/internal/planner"
)

// Sampler grabs one PNG per timemark by running ffmpeg, up to Workers at a
// time.
type Sampler struct {
	FFmpegPath string
	Workers    int
	Verbose    bool
	Log        *logging.Logger // optional

	// OnFrame, if set, is called after each frame is written. It may be
	// called from several goroutines.
	OnFrame func(index int)

	// run executes one attempt; tests replace it.
	run func(ctx context.Context, req FrameRequest, seek SeekMode) ExecResult
}

// NewSampler returns a Sampler using ffmpegPath ("ffmpeg" if empty).
func NewSampler(ffmpegPath string, workers int, verbose bool, log *logging.Logger) *Sampler {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Sampler{FFmpegPath: ffmpegPath, Workers: workers, Verbose: verbose, Log: log}
}

// FrameName is the file name used for timemark index in the work dir.
func FrameName(index int) string {
	return fmt.Sprintf("frame-%05d.png", index)
}

// Sample writes one frame per timemark into workDir and returns them in
// plan order. Either every frame is returned or none: on failure the error
// is a *failure.SamplingError for the lowest failing index. Errors caused
// only by the cancellation of sibling workers are not reported.
func (s *Sampler) Sample(ctx context.Context, path string, marks []planner.Timemark, size planner.ThumbnailSize, workDir string) ([]planner.Frame, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create work dir")
	}

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}

	paths := make([]string, len(marks))
	errs := make([]error, len(marks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, tm := range marks {
		i, tm := i, tm
		g.Go(func() error {
			out := filepath.Join(workDir, FrameName(i))
			if err := s.grab(gctx, path, tm, size, out); err != nil {
				errs[i] = err
				return err
			}
			paths[i] = out
			if s.OnFrame != nil {
				s.OnFrame(i)
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

// grab runs ffmpeg for one timemark, changing seek strategy on
// seek-related failures.
func (s *Sampler) grab(ctx context.Context, input string, tm planner.Timemark, size planner.ThumbnailSize, out string) error {
	req := FrameRequest{Input: input, Offset: tm.Offset, Size: size, Output: out}
	rs := NewRetryState()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = os.Remove(out)

		res := s.exec(ctx, req, rs.Seek)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		noFrame := res.Err == nil && !frameWritten(out)
		if res.Err == nil && !noFrame {
			return nil
		}

		prev := rs.Seek
		action := rs.Advance(res.Stderr, noFrame)
		if action == RetryNone {
			return attemptError(res, noFrame, prev)
		}
		if s.Log != nil {
			s.Log.Debug("frame %d at %ss: %s seek failed, retrying with %s seek", tm.Index, tm.Formatted, prev, rs.Seek)
		}
	}
}

func (s *Sampler) exec(ctx context.Context, req FrameRequest, seek SeekMode) ExecResult {
	if s.run != nil {
		return s.run(ctx, req, seek)
	}
	return Execute(ctx, s.FFmpegPath, BuildFrameArgs(req, seek, s.Verbose), s.Verbose)
}

func attemptError(res ExecResult, noFrame bool, seek SeekMode) error {
	tail := lastLine(res.Stderr)
	switch {
	case noFrame && tail != "":
		return errors.Errorf("no frame written (%s seek): %s", seek, tail)
	case noFrame:
		return errors.Errorf("no frame written (%s seek)", seek)
	case tail != "":
		return errors.Wrapf(res.Err, "ffmpeg (%s seek): %s", seek, tail)
	default:
		return errors.Wrapf(res.Err, "ffmpeg (%s seek)", seek)
	}
}

// lastLine returns the last non-empty line of ffmpeg's stderr.
func lastLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
