package mpeg1

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/planner"
)

func TestSupports(t *testing.T) {
	assert.True(t, Supports("/v/clip.mpg"))
	assert.True(t, Supports("CLIP.MPEG"))
	assert.False(t, Supports("clip.mp4"))
	assert.False(t, Supports("mpg"))
}

func TestSplitRuns(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 5}}, splitRuns(5, 1))
	assert.Equal(t, [][2]int{{0, 2}, {2, 5}}, splitRuns(5, 2))
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, splitRuns(2, 8))
	assert.Empty(t, splitRuns(0, 4))
	assert.Equal(t, [][2]int{{0, 3}}, splitRuns(3, 0))
}

func TestProbe_MissingFile(t *testing.T) {
	_, err := Provider{}.Probe(context.Background(), filepath.Join(t.TempDir(), "nope.mpg"))
	assert.True(t, failure.IsMedia(err))
}

func TestProbe_NotMPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.mpg")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a program stream"), 0o644))
	_, err := Provider{}.Probe(context.Background(), path)
	assert.True(t, failure.IsMedia(err))
}

func TestSample_OpenFailureIsSamplingError(t *testing.T) {
	s := &Sampler{Workers: 2}
	marks := []planner.Timemark{planner.NewTimemark(0, 0), planner.NewTimemark(1, 1)}
	_, err := s.Sample(context.Background(), filepath.Join(t.TempDir(), "nope.mpg"), marks,
		planner.ThumbnailSize{Width: 8, Height: 8}, t.TempDir())
	var se *failure.SamplingError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Index)
}

// synthesize writes a short MPEG-1 program stream with ffmpeg, or skips.
func synthesize(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
	path := filepath.Join(t.TempDir(), "src.mpg")
	cmd := exec.Command("ffmpeg", "-hide_banner", "-loglevel", "error", "-y",
		"-f", "lavfi", "-i", "testsrc=duration=3:size=160x120:rate=25",
		"-c:v", "mpeg1video", "-f", "mpeg", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot synthesize MPEG-1 video: %v: %s", err, out)
	}
	return path
}

func TestProbeAndSample_Synthesized(t *testing.T) {
	src := synthesize(t)

	meta, err := Provider{}.Probe(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 160, meta.Width)
	assert.Equal(t, 120, meta.Height)
	assert.InDelta(t, 25.0, meta.FPS, 0.01)
	assert.InDelta(t, 3.0, meta.Duration, 0.2)

	plan, err := planner.BuildPlan(planner.SamplingPolicy{SecondsPerThumbnail: 1}, planner.SizePolicy{Width: 40}, meta)
	require.NoError(t, err)

	s := &Sampler{Workers: 2}
	frames, err := s.Sample(context.Background(), src, plan.Timemarks, plan.Size, filepath.Join(t.TempDir(), "work"))
	require.NoError(t, err)
	require.Len(t, frames, plan.Len())

	img, err := imaging.Open(frames[len(frames)-1].Path)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
}
