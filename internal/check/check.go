// Package check provides system diagnostics (the check subcommand) and
// pre-pipeline dependency validation (CheckDeps) for ffmpeg, ffprobe, and
// the PNG frame grab every thumbnail relies on.
package check

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/backmassage/thumbvtt/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool is missing or
// unusable.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrFrameGrabFailed = errors.New("ffmpeg found but a test frame grab to PNG failed")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// RunCheck runs the interactive check flow: prints availability of ffmpeg,
// ffprobe, the PNG encoder, a test frame grab, and the upload target.
// It does not stop on failure; the result reports whether the configured
// backend is usable.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := true
	ffmpegOK := checkVersion(log, "ffmpeg", cfg.FFmpegPath)
	ffprobeOK := checkVersion(log, "ffprobe", cfg.FFprobePath)
	if ffmpegOK {
		checkPNGEncoder(log, cfg.FFmpegPath)
		ffmpegOK = checkFrameGrab(log, cfg.FFmpegPath)
	}
	if cfg.Backend == config.BackendFFmpeg && !(ffmpegOK && ffprobeOK) {
		ok = false
	}

	log.Info("MPEG-1 decoder: built in (backend %q)", config.BackendMPEG1)
	log.Info("Active backend: %s, workers: %d", cfg.Backend, cfg.Workers)
	checkUpload(log, cfg)
	return ok
}

// checkVersion verifies a tool is on PATH and logs its version string.
func checkVersion(log Logger, name, path string) bool {
	if _, err := exec.LookPath(path); err != nil {
		log.Error("%s not found (%s)", name, path)
		return false
	}
	out, err := exec.Command(path, "-version").Output()
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return false
	}
	log.Success("%s: %s", name, firstLine(string(out)))
	return true
}

// checkPNGEncoder lists the PNG image encoders reported by ffmpeg.
func checkPNGEncoder(log Logger, ffmpegPath string) {
	out, err := exec.Command(ffmpegPath, "-hide_banner", "-encoders").Output()
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return
	}
	found := false
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "png" {
			log.Info("  %s", strings.TrimSpace(line))
			found = true
		}
	}
	if !found {
		log.Error("PNG encoder not available")
	}
}

// checkFrameGrab writes one scaled frame from a synthetic source.
func checkFrameGrab(log Logger, ffmpegPath string) bool {
	log.Info("Testing frame grab...")
	if testFrameGrab(ffmpegPath) {
		log.Success("Frame grab works")
		return true
	}
	log.Error("Test frame grab to PNG failed")
	return false
}

// checkUpload reports the object storage target when uploads are enabled.
func checkUpload(log Logger, cfg *config.Config) {
	if !cfg.Upload {
		log.Debug("Upload: disabled")
		return
	}
	if cfg.S3.Endpoint == "" || cfg.S3.Bucket == "" {
		log.Error("Upload: THUMBVTT_S3_ENDPOINT and THUMBVTT_S3_BUCKET must be set")
		return
	}
	log.Info("Upload: %s bucket %q (ssl=%t)", cfg.S3.Endpoint, cfg.S3.Bucket, cfg.S3.UseSSL)
}

// CheckDeps is the pre-pipeline validation. The mpeg1 backend needs no
// external tools. The ffmpeg backend needs ffmpeg and ffprobe on PATH and
// a working PNG frame grab. Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if cfg.Backend == config.BackendMPEG1 {
		return nil
	}
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath(cfg.FFprobePath); err != nil {
		return ErrFfprobeNotFound
	}
	if !testFrameGrab(cfg.FFmpegPath) {
		return ErrFrameGrabFailed
	}
	return nil
}

// --- internal helpers ---

// testFrameGrab runs a minimal single-frame PNG extraction from a lavfi
// test source into a temporary directory.
func testFrameGrab(ffmpegPath string) bool {
	dir, err := os.MkdirTemp("", "thumbvtt-check-")
	if err != nil {
		return false
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "frame.png")
	if !runSilent(ffmpegPath, frameGrabArgs(out)...) {
		return false
	}
	fi, err := os.Stat(out)
	return err == nil && fi.Size() > 0
}

// frameGrabArgs returns the ffmpeg arguments for the test frame grab.
// Shared by checkFrameGrab and CheckDeps.
func frameGrabArgs(out string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=320x240:rate=25:duration=1",
		"-ss", "0.5", "-frames:v", "1",
		"-vf", "scale=160:120",
		"-y", out,
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		s = s[:idx]
	}
	return s
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
