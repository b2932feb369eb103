package check

import (
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/thumbvtt/internal/config"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) add(level, format string, args ...interface{}) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Info(f string, a ...interface{})    { r.add("INFO", f, a...) }
func (r *recordingLogger) Success(f string, a ...interface{}) { r.add("SUCCESS", f, a...) }
func (r *recordingLogger) Warn(f string, a ...interface{})    { r.add("WARN", f, a...) }
func (r *recordingLogger) Error(f string, a ...interface{})   { r.add("ERROR", f, a...) }
func (r *recordingLogger) Debug(f string, a ...interface{})   { r.add("DEBUG", f, a...) }

func missingTools() *config.Config {
	cfg := config.DefaultConfig()
	cfg.FFmpegPath = "/nonexistent/ffmpeg"
	cfg.FFprobePath = "/nonexistent/ffprobe"
	return &cfg
}

func TestCheckDeps_MPEG1NeedsNoTools(t *testing.T) {
	cfg := missingTools()
	cfg.Backend = config.BackendMPEG1
	assert.NoError(t, CheckDeps(cfg))
}

func TestCheckDeps_MissingFFmpeg(t *testing.T) {
	assert.ErrorIs(t, CheckDeps(missingTools()), ErrFfmpegNotFound)
}

func TestCheckDeps_MissingFFprobe(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	cfg := missingTools()
	cfg.FFmpegPath = sh
	assert.ErrorIs(t, CheckDeps(cfg), ErrFfprobeNotFound)
}

func TestCheckDeps_FrameGrabFails(t *testing.T) {
	f, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false not available")
	}
	cfg := missingTools()
	cfg.FFmpegPath = f
	cfg.FFprobePath = f
	assert.ErrorIs(t, CheckDeps(cfg), ErrFrameGrabFailed)
}

func TestRunCheck_MissingTools(t *testing.T) {
	log := &recordingLogger{}
	cfg := missingTools()
	cfg.Upload = true

	ok := RunCheck(cfg, log)
	assert.False(t, ok)
	assert.Contains(t, log.lines, "ERROR ffmpeg not found (/nonexistent/ffmpeg)")
	assert.Contains(t, log.lines, "ERROR ffprobe not found (/nonexistent/ffprobe)")
	assert.Contains(t, log.lines, "ERROR Upload: THUMBVTT_S3_ENDPOINT and THUMBVTT_S3_BUCKET must be set")
}

func TestRunCheck_MPEG1BackendStillOK(t *testing.T) {
	log := &recordingLogger{}
	cfg := missingTools()
	cfg.Backend = config.BackendMPEG1
	assert.True(t, RunCheck(cfg, log))
}

func TestFrameGrabArgs(t *testing.T) {
	args := frameGrabArgs("/tmp/x.png")
	require.NotEmpty(t, args)
	assert.Equal(t, "/tmp/x.png", args[len(args)-1])
	assert.Contains(t, args, "-frames:v")
	assert.Contains(t, args, "lavfi")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "ffmpeg version 6.1", firstLine("ffmpeg version 6.1\nbuilt with gcc\n"))
	assert.Equal(t, "x", firstLine("  x  "))
}

func TestRealFrameGrab(t *testing.T) {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	assert.True(t, testFrameGrab(path))
}
