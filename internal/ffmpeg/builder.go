package ffmpeg

import (
	"fmt"
	"strconv"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/backmassage/thumbvtt/internal/planner"
)

// SeekMode selects where the -ss offset is applied.
type SeekMode int

const (
	// SeekFast puts -ss before -i: ffmpeg jumps to the nearest keyframe
	// and decodes forward. Fast and exact on well-formed files.
	SeekFast SeekMode = iota
	// SeekAccurate puts -ss after -i: every frame up to the offset is
	// decoded and discarded. Slow but robust against broken indexes.
	SeekAccurate
	// SeekBackoff input-seeks backoffSeconds early and output-seeks the
	// remainder, for files whose keyframe at the exact offset is damaged.
	SeekBackoff
)

func (m SeekMode) String() string {
	switch m {
	case SeekFast:
		return "fast"
	case SeekAccurate:
		return "accurate"
	case SeekBackoff:
		return "backoff"
	default:
		return "unknown"
	}
}

const backoffSeconds = 0.5

// FrameRequest describes one frame grab.
type FrameRequest struct {
	Input  string
	Offset float64
	Size   planner.ThumbnailSize
	Output string // PNG path
}

// BuildFrameArgs constructs the ffmpeg argument slice (without the binary
// name) that writes a single scaled frame at req.Offset to req.Output.
func BuildFrameArgs(req FrameRequest, seek SeekMode, verbose bool) []string {
	inKw := ffmpeggo.KwArgs{}
	// The scale filter output is the only mapped stream, so audio and
	// subtitles never reach the muxer.
	outKw := ffmpeggo.KwArgs{"frames:v": 1}

	switch seek {
	case SeekAccurate:
		outKw["ss"] = seconds(req.Offset)
	case SeekBackoff:
		pre := req.Offset - backoffSeconds
		if pre < 0 {
			pre = 0
		}
		inKw["ss"] = seconds(pre)
		outKw["ss"] = seconds(req.Offset - pre)
	default:
		inKw["ss"] = seconds(req.Offset)
	}

	loglevel := "error"
	if verbose {
		loglevel = "info"
	}

	return ffmpeggo.Input(req.Input, inKw).
		Filter("scale", ffmpeggo.Args{fmt.Sprintf("%d:%d", req.Size.Width, req.Size.Height)}).
		Output(req.Output, outKw).
		GlobalArgs("-hide_banner", "-nostdin", "-loglevel", loglevel).
		OverWriteOutput().
		GetArgs()
}

// seconds formats an offset with millisecond precision, matching the
// precision of planner timemarks.
func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
