package probe

import "strconv"

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	FormatName string
	Duration   float64
	Size       int64
	BitRate    int64
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Index         int
	Codec         string
	Width         int
	Height        int
	Duration      float64
	AvgFrameRate  string
	RFrameRate    string
	Rotation      int // Normalized to 0, 90, 180 or 270.
	IsAttachedPic bool
}

// ProbeResult is the parsed output of a single ffprobe JSON call.
// PrimaryVideo is the first non-attached-pic video stream (nil if none).
type ProbeResult struct {
	Format       FormatInfo
	PrimaryVideo *VideoStream
}

// VideoMetadata is the immutable subset of probe data consumed by the
// planner. FPS is 0 when the frame rate could not be determined.
type VideoMetadata struct {
	Duration float64
	Width    int
	Height   int
	FPS      float64
}

// HasFPS reports whether the frame rate is known.
func (m VideoMetadata) HasFPS() bool { return m.FPS > 0 }

// Resolution returns "WxH" for the metadata, or "unknown".
func (m VideoMetadata) Resolution() string {
	if m.Width <= 0 || m.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(m.Width) + "x" + strconv.Itoa(m.Height)
}
