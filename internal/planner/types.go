package planner

import (
	"fmt"
	"math"
	"strconv"

	"github.com/backmassage/thumbvtt/internal/failure"
)

// PolicyKind identifies which sampling rule is active.
type PolicyKind int

const (
	PolicyNone PolicyKind = iota
	PolicySeconds
	PolicyFrames
	PolicyExplicit
)

func (k PolicyKind) String() string {
	switch k {
	case PolicySeconds:
		return "seconds-per-thumbnail"
	case PolicyFrames:
		return "frames-per-thumbnail"
	case PolicyExplicit:
		return "explicit-timemarks"
	default:
		return "none"
	}
}

// SamplingPolicy selects how timemarks are computed. Exactly one field must
// be set; zero values (and an empty Timemarks slice) mean "unset".
type SamplingPolicy struct {
	SecondsPerThumbnail float64
	FramesPerThumbnail  int
	Timemarks           []float64
}

// Kind returns the active policy, or PolicyNone. When several fields are
// set the first in seconds, frames, explicit order is returned; Validate
// rejects that case.
func (p SamplingPolicy) Kind() PolicyKind {
	switch {
	case p.SecondsPerThumbnail != 0:
		return PolicySeconds
	case p.FramesPerThumbnail != 0:
		return PolicyFrames
	case len(p.Timemarks) > 0:
		return PolicyExplicit
	default:
		return PolicyNone
	}
}

// Validate checks that exactly one rule is configured and that its value
// is in range.
func (p SamplingPolicy) Validate() error {
	set := 0
	if p.SecondsPerThumbnail != 0 {
		set++
	}
	if p.FramesPerThumbnail != 0 {
		set++
	}
	if len(p.Timemarks) > 0 {
		set++
	}
	switch {
	case set == 0:
		return failure.Config("sampling", "specify how timemarks are calculated (seconds, frames, or explicit timemarks)")
	case set > 1:
		return failure.Config("sampling", "seconds, frames and explicit timemarks are mutually exclusive")
	}

	switch p.Kind() {
	case PolicySeconds:
		if math.IsNaN(p.SecondsPerThumbnail) || math.IsInf(p.SecondsPerThumbnail, 0) || p.SecondsPerThumbnail < MinStep {
			return failure.Config("secondsPerThumbnail", "must be at least %.3f (got %v)", MinStep, p.SecondsPerThumbnail)
		}
	case PolicyFrames:
		if p.FramesPerThumbnail < 0 {
			return failure.Config("framesPerThumbnail", "must be positive (got %d)", p.FramesPerThumbnail)
		}
	}
	return nil
}

// SizePolicy is the requested thumbnail size; 0 means "derive".
type SizePolicy struct {
	Width  int
	Height int
}

// IsZero reports whether neither dimension was requested.
func (s SizePolicy) IsZero() bool { return s.Width == 0 && s.Height == 0 }

// Timemark is one sample point. Offset is already rounded to millisecond
// precision so cue boundaries are reproducible; Formatted is the same value
// with exactly three decimals.
type Timemark struct {
	Index     int
	Offset    float64
	Formatted string
}

// NewTimemark rounds offset to milliseconds and formats it.
func NewTimemark(index int, offset float64) Timemark {
	r := Round3(offset)
	return Timemark{
		Index:     index,
		Offset:    r,
		Formatted: strconv.FormatFloat(r, 'f', 3, 64),
	}
}

// ThumbnailSize is the resolved pixel size of every cell in the sheet.
type ThumbnailSize struct {
	Width  int
	Height int
}

func (s ThumbnailSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// SamplingPlan is the immutable output of BuildPlan.
type SamplingPlan struct {
	Policy    PolicyKind
	Timemarks []Timemark
	Size      ThumbnailSize
	Duration  float64
}

// Len returns the number of thumbnails the plan produces.
func (p *SamplingPlan) Len() int { return len(p.Timemarks) }

// IsEmpty reports whether the plan has no timemarks (zero-length video).
func (p *SamplingPlan) IsEmpty() bool { return len(p.Timemarks) == 0 }

// Frame pairs a timemark with the image file produced for it. Samplers
// return frames explicitly paired so a reordering collaborator cannot
// silently misalign cues and cells.
type Frame struct {
	Timemark Timemark
	Path     string
}

// Round3 rounds seconds to millisecond precision.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
