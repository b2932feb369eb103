package ffmpeg

import (
	"context"
	"errors"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/planner"
)

func indexOf(args []string, s string) int {
	for i, a := range args {
		if a == s {
			return i
		}
	}
	return -1
}

func marksAt(offsets ...float64) []planner.Timemark {
	marks := make([]planner.Timemark, len(offsets))
	for i, o := range offsets {
		marks[i] = planner.NewTimemark(i, o)
	}
	return marks
}

// --- Builder ---

func TestBuildFrameArgs_SeekPlacement(t *testing.T) {
	req := FrameRequest{
		Input:  "/media/in.mkv",
		Offset: 12.3456,
		Size:   planner.ThumbnailSize{Width: 160, Height: 90},
		Output: "/tmp/work/frame-00001.png",
	}

	fast := BuildFrameArgs(req, SeekFast, false)
	in := indexOf(fast, "-i")
	ss := indexOf(fast, "-ss")
	require.GreaterOrEqual(t, in, 0)
	require.GreaterOrEqual(t, ss, 0)
	assert.Less(t, ss, in, "fast seek goes before -i")
	assert.Equal(t, "12.346", fast[ss+1])
	assert.Equal(t, "/media/in.mkv", fast[in+1])

	accurate := BuildFrameArgs(req, SeekAccurate, false)
	assert.Greater(t, indexOf(accurate, "-ss"), indexOf(accurate, "-i"), "accurate seek goes after -i")
}

func TestBuildFrameArgs_Backoff(t *testing.T) {
	req := FrameRequest{Input: "in.mp4", Offset: 10, Size: planner.ThumbnailSize{Width: 8, Height: 8}, Output: "o.png"}
	args := BuildFrameArgs(req, SeekBackoff, false)

	in := indexOf(args, "-i")
	var seeks []string
	for i, a := range args {
		if a == "-ss" {
			seeks = append(seeks, args[i+1])
			if len(seeks) == 1 {
				assert.Less(t, i, in)
			} else {
				assert.Greater(t, i, in)
			}
		}
	}
	assert.Equal(t, []string{"9.500", "0.500"}, seeks)

	req.Offset = 0.2
	args = BuildFrameArgs(req, SeekBackoff, false)
	assert.Contains(t, args, "0.000")
	assert.Contains(t, args, "0.200")
}

func TestBuildFrameArgs_Common(t *testing.T) {
	req := FrameRequest{Input: "in.mp4", Offset: 1, Size: planner.ThumbnailSize{Width: 320, Height: 180}, Output: "out.png"}
	args := BuildFrameArgs(req, SeekFast, true)

	assert.Contains(t, args, "out.png")
	assert.Contains(t, args, "-y")
	assert.Contains(t, args, "-hide_banner")

	fv := indexOf(args, "-frames:v")
	require.GreaterOrEqual(t, fv, 0)
	assert.Equal(t, "1", args[fv+1])

	ll := indexOf(args, "-loglevel")
	require.GreaterOrEqual(t, ll, 0)
	assert.Equal(t, "info", args[ll+1])

	fc := indexOf(args, "-filter_complex")
	require.GreaterOrEqual(t, fc, 0)
	assert.Contains(t, args[fc+1], "scale=320:180")
}

// --- Error classification and retry ---

func TestStderrClassification(t *testing.T) {
	assert.True(t, MatchEmptyOutput("Output file is empty, nothing was encoded (check -ss / -t / -frames parameters if used)"))
	assert.True(t, MatchSeekIssue("[mov,mp4,m4a,3gp,3g2,mj2 @ 0x1] could not seek to position 12.000"))
	assert.True(t, MatchDecodeIssue("[h264 @ 0x5581] Invalid NAL unit size (1234 > 99)."))
	assert.True(t, MatchInputFatal("in.mp4: No such file or directory"))
	assert.True(t, MatchInputFatal("in.mp4: Invalid data found when processing input"))
	assert.False(t, MatchInputFatal("Output file is empty, nothing was encoded"))
	assert.False(t, MatchSeekIssue("frame=    1 fps=0.0 q=-0.0 Lsize=N/A"))
}

func TestRetryState_Progression(t *testing.T) {
	rs := NewRetryState()
	assert.Equal(t, SeekFast, rs.Seek)

	assert.Equal(t, RetryAccurateSeek, rs.Advance("", true))
	assert.Equal(t, SeekAccurate, rs.Seek)

	assert.Equal(t, RetryBackoffSeek, rs.Advance("error while seeking", false))
	assert.Equal(t, SeekBackoff, rs.Seek)

	assert.Equal(t, RetryNone, rs.Advance("", true), "attempt limit")
}

func TestRetryState_StopsOnFatalOrUnknown(t *testing.T) {
	rs := NewRetryState()
	assert.Equal(t, RetryNone, rs.Advance("x.mp4: Permission denied", false))
	assert.Equal(t, SeekFast, rs.Seek)

	rs = NewRetryState()
	assert.Equal(t, RetryNone, rs.Advance("Killed", false))
}

// --- Sampler ---

func fakeRun(fail func(req FrameRequest, seek SeekMode) bool) func(context.Context, FrameRequest, SeekMode) ExecResult {
	return func(_ context.Context, req FrameRequest, seek SeekMode) ExecResult {
		if fail != nil && fail(req, seek) {
			return ExecResult{Stderr: "boom\n", Err: errors.New("exit status 1")}
		}
		img := imaging.New(req.Size.Width, req.Size.Height, color.NRGBA{R: 200, A: 255})
		if err := imaging.Save(img, req.Output); err != nil {
			return ExecResult{Err: err}
		}
		return ExecResult{}
	}
}

func TestSampler_WritesFramesInOrder(t *testing.T) {
	work := t.TempDir()
	var seen atomic.Int32
	s := &Sampler{Workers: 3, run: fakeRun(nil), OnFrame: func(int) { seen.Add(1) }}

	marks := marksAt(0, 2, 4, 6)
	frames, err := s.Sample(context.Background(), "in.mp4", marks, planner.ThumbnailSize{Width: 16, Height: 9}, work)
	require.NoError(t, err)
	require.Len(t, frames, 4)
	for i, f := range frames {
		assert.Equal(t, i, f.Timemark.Index)
		assert.Equal(t, filepath.Join(work, FrameName(i)), f.Path)
		assert.FileExists(t, f.Path)
	}
	assert.Equal(t, int32(4), seen.Load())
}

func TestSampler_FailureNamesIndex(t *testing.T) {
	s := &Sampler{Workers: 2, run: fakeRun(func(req FrameRequest, _ SeekMode) bool {
		return req.Offset == 4
	})}

	marks := marksAt(0, 2, 4, 6, 8)
	frames, err := s.Sample(context.Background(), "in.mp4", marks, planner.ThumbnailSize{Width: 8, Height: 8}, t.TempDir())
	require.Error(t, err)
	assert.Nil(t, frames)

	var se *failure.SamplingError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Index)
	assert.Equal(t, 4.0, se.Offset)
	assert.Contains(t, err.Error(), "boom")
}

func TestSampler_RetriesWithAccurateSeek(t *testing.T) {
	var attempts atomic.Int32
	s := &Sampler{Workers: 1}
	s.run = func(ctx context.Context, req FrameRequest, seek SeekMode) ExecResult {
		attempts.Add(1)
		if seek == SeekFast {
			// Clean exit but nothing written.
			return ExecResult{Stderr: "Output file is empty, nothing was encoded"}
		}
		return fakeRun(nil)(ctx, req, seek)
	}

	frames, err := s.Sample(context.Background(), "in.mp4", marksAt(5), planner.ThumbnailSize{Width: 8, Height: 8}, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, frames, 1)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestSampler_NoFrameAfterAllStrategies(t *testing.T) {
	s := &Sampler{Workers: 1, run: func(context.Context, FrameRequest, SeekMode) ExecResult {
		return ExecResult{}
	}}
	_, err := s.Sample(context.Background(), "in.mp4", marksAt(0), planner.ThumbnailSize{Width: 8, Height: 8}, t.TempDir())
	var se *failure.SamplingError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Index)
	assert.Contains(t, err.Error(), "no frame written")
}

func TestSampler_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Sampler{Workers: 2, run: fakeRun(nil)}
	_, err := s.Sample(ctx, "in.mp4", marksAt(0, 1), planner.ThumbnailSize{Width: 8, Height: 8}, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

// --- Integration (requires ffmpeg) ---

func TestSampler_RealFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp4")
	gen := exec.Command("ffmpeg", "-hide_banner", "-loglevel", "error", "-y",
		"-f", "lavfi", "-i", "testsrc=duration=3:size=320x240:rate=25",
		"-pix_fmt", "yuv420p", src)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot synthesize test video: %v: %s", err, out)
	}

	s := NewSampler("", 2, false, nil)
	frames, err := s.Sample(context.Background(), src, marksAt(0, 1, 2), planner.ThumbnailSize{Width: 64, Height: 48}, filepath.Join(dir, "work"))
	require.NoError(t, err)
	require.Len(t, frames, 3)

	img, err := imaging.Open(frames[2].Path)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	_, err = os.Stat(frames[0].Path)
	assert.NoError(t, err)
}
