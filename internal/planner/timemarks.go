package planner

import (
	"math"

	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/probe"
)

const (
	// MinStep is the smallest spacing between timemarks. Offsets are kept
	// at millisecond precision, so anything finer would produce duplicates.
	MinStep = 0.001

	// MaxTimemarks bounds the plan size; a sheet this large is already
	// far beyond what a player will load.
	MaxTimemarks = 100000
)

// Timemarks computes the ordered sample points for policy over a video.
//
//   - Explicit timemarks are used as given (rounded to milliseconds) and must
//     be non-negative and strictly increasing. Checking them against the
//     duration is the caller's job.
//   - Seconds s: 0, s, 2s, ... while both the raw and rounded values are
//     below the duration.
//   - Frames f: the same with a step of f/fps; an unknown fps is an error.
//
// A duration of zero or less yields an empty plan.
func Timemarks(policy SamplingPolicy, meta probe.VideoMetadata) ([]Timemark, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	var step float64
	switch policy.Kind() {
	case PolicyExplicit:
		if meta.Duration <= 0 {
			return []Timemark{}, nil
		}
		return explicitMarks(policy.Timemarks)
	case PolicySeconds:
		step = policy.SecondsPerThumbnail
	case PolicyFrames:
		if !meta.HasFPS() {
			return nil, failure.Config("framesPerThumbnail", "cannot determine video FPS")
		}
		step = float64(policy.FramesPerThumbnail) / meta.FPS
		if step < MinStep {
			return nil, failure.Config("framesPerThumbnail", "%d frames at %.3f fps is below %.3fs spacing",
				policy.FramesPerThumbnail, meta.FPS, MinStep)
		}
	}

	if meta.Duration <= 0 {
		return []Timemark{}, nil
	}
	return steppedMarks(step, meta.Duration)
}

// steppedMarks multiplies rather than accumulates so float drift cannot
// shift later marks. The stop test uses the raw offset as well as the
// rounded one: a mark at or past the end can round back below it.
func steppedMarks(step, duration float64) ([]Timemark, error) {
	estimate := math.Ceil(duration / step)
	if estimate > MaxTimemarks {
		return nil, failure.Config("sampling", "%.0f thumbnails requested, limit is %d", estimate, MaxTimemarks)
	}

	marks := make([]Timemark, 0, int(estimate))
	for i := 0; ; i++ {
		raw := float64(i) * step
		tm := NewTimemark(i, raw)
		if raw >= duration || tm.Offset >= duration {
			break
		}
		marks = append(marks, tm)
	}
	return marks, nil
}

func explicitMarks(offsets []float64) ([]Timemark, error) {
	if len(offsets) > MaxTimemarks {
		return nil, failure.Config("timemarks", "%d timemarks given, limit is %d", len(offsets), MaxTimemarks)
	}
	marks := make([]Timemark, 0, len(offsets))
	for i, off := range offsets {
		if math.IsNaN(off) || math.IsInf(off, 0) || off < 0 {
			return nil, failure.Config("timemarks", "timemark %d must be a non-negative number (got %v)", i, off)
		}
		tm := NewTimemark(i, off)
		if i > 0 && tm.Offset <= marks[i-1].Offset {
			return nil, failure.Config("timemarks", "timemarks must be strictly increasing (%s after %s)",
				tm.Formatted, marks[i-1].Formatted)
		}
		marks = append(marks, tm)
	}
	return marks, nil
}
