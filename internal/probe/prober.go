package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/backmassage/thumbvtt/internal/failure"
)

// ErrNoVideoStream is wrapped in a MediaError when the file has no
// decodable (non cover-art) video stream.
var ErrNoVideoStream = errors.New("no video stream")

// Prober runs ffprobe. The zero value uses "ffprobe" from PATH.
type Prober struct {
	Path string
}

func (p Prober) binary() string {
	if p.Path == "" {
		return "ffprobe"
	}
	return p.Path
}

// Inspect runs a single ffprobe JSON call against path and returns the
// parsed result.
func (p Prober) Inspect(ctx context.Context, path string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, p.binary(),
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseJSON(out)
}

// Probe implements the pipeline's metadata provider: every failure is
// reported as a *failure.MediaError.
func (p Prober) Probe(ctx context.Context, path string) (VideoMetadata, error) {
	pr, err := p.Inspect(ctx, path)
	if err != nil {
		return VideoMetadata{}, &failure.MediaError{Path: path, Err: err}
	}
	meta, err := pr.Metadata()
	if err != nil {
		return VideoMetadata{}, &failure.MediaError{Path: path, Err: err}
	}
	return meta, nil
}

// Metadata reduces the probe result to planner input. Duration prefers the
// container value and falls back to the stream; FPS prefers avg_frame_rate
// and falls back to r_frame_rate.
func (p *ProbeResult) Metadata() (VideoMetadata, error) {
	v := p.PrimaryVideo
	if v == nil {
		return VideoMetadata{}, ErrNoVideoStream
	}
	w, h := p.DisplaySize()

	duration := p.Format.Duration
	if duration <= 0 {
		duration = v.Duration
	}

	fps := parseRational(v.AvgFrameRate)
	if fps <= 0 {
		fps = parseRational(v.RFrameRate)
	}

	return VideoMetadata{
		Duration: duration,
		Width:    w,
		Height:   h,
		FPS:      fps,
	}, nil
}

// ParseJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type ffprobeStream struct {
	Index        int               `json:"index"`
	CodecName    string            `json:"codec_name"`
	CodecType    string            `json:"codec_type"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Duration     string            `json:"duration"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	RFrameRate   string            `json:"r_frame_rate"`
	Disposition  map[string]int    `json:"disposition"`
	Tags         map[string]string `json:"tags"`
	SideData     []ffprobeSideData `json:"side_data_list"`
}

type ffprobeSideData struct {
	Type     string  `json:"side_data_type"`
	Rotation float64 `json:"rotation"`
}

// --- Conversion from wire types to domain types ---

func buildResult(raw *ffprobeOutput) *ProbeResult {
	pr := &ProbeResult{
		Format: FormatInfo{
			Filename:   raw.Format.Filename,
			FormatName: raw.Format.FormatName,
			Duration:   parseFloat(raw.Format.Duration),
			Size:       parseInt64(raw.Format.Size),
			BitRate:    parseInt64(raw.Format.BitRate),
		},
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" {
			continue
		}
		vs := convertVideo(s)
		if !vs.IsAttachedPic && pr.PrimaryVideo == nil {
			pr.PrimaryVideo = &vs
		}
	}
	return pr
}

func convertVideo(s *ffprobeStream) VideoStream {
	return VideoStream{
		Index:         s.Index,
		Codec:         s.CodecName,
		Width:         s.Width,
		Height:        s.Height,
		Duration:      parseFloat(s.Duration),
		AvgFrameRate:  s.AvgFrameRate,
		RFrameRate:    s.RFrameRate,
		Rotation:      streamRotation(s),
		IsAttachedPic: s.Disposition["attached_pic"] == 1,
	}
}

// streamRotation reads the display matrix side data (current ffprobe) and
// falls back to the legacy "rotate" tag.
func streamRotation(s *ffprobeStream) int {
	for _, sd := range s.SideData {
		if sd.Type == "Display Matrix" {
			return normalizeRotation(int(sd.Rotation))
		}
	}
	if r, ok := s.Tags["rotate"]; ok {
		return normalizeRotation(parseInt(r))
	}
	return 0
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

// parseRational parses "num/den" (or a plain number) into a float.
// "0/0" and malformed input yield 0.
func parseRational(s string) float64 {
	s = strings.TrimSpace(s)
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return parseFloat(s)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
