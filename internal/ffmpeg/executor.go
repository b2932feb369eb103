package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
)

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string
	Err    error
}

// Execute runs ffmpegPath with args. When verbose is enabled, stderr is
// tee'd to os.Stderr in real time; otherwise it is captured silently for
// retry classification.
func Execute(ctx context.Context, ffmpegPath string, args []string, verbose bool) ExecResult {
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	var stderrBuf bytes.Buffer
	if verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	return ExecResult{
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}

// frameWritten reports whether path exists and is non-empty.
func frameWritten(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}
