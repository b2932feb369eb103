package ffmpeg

// RetryAction identifies which fix was applied (or none).
type RetryAction int

const (
	RetryNone         RetryAction = iota
	RetryAccurateSeek             // Move -ss after -i.
	RetryBackoffSeek              // Seek slightly early, then output-seek forward.
)

const maxAttempts = 3

// RetryState tracks the seek strategy across ffmpeg attempts for a single
// frame.
type RetryState struct {
	Attempt     int
	MaxAttempts int
	Seek        SeekMode
}

// NewRetryState starts at the fast input seek.
func NewRetryState() *RetryState {
	return &RetryState{MaxAttempts: maxAttempts, Seek: SeekFast}
}

// Advance inspects the outcome of a failed attempt and switches to the next
// seek strategy when the failure looks seek-related. noFrame is true when
// ffmpeg exited cleanly but wrote no image. Returns RetryNone when the
// input is unusable, the failure is not recognised, or the attempt limit
// is reached.
//
// Strategy order: fast → accurate → backoff. One change per call.
func (s *RetryState) Advance(stderr string, noFrame bool) RetryAction {
	s.Attempt++
	if s.Attempt >= s.MaxAttempts {
		return RetryNone
	}
	if MatchInputFatal(stderr) {
		return RetryNone
	}

	retryable := noFrame ||
		MatchEmptyOutput(stderr) ||
		MatchSeekIssue(stderr) ||
		MatchDecodeIssue(stderr)
	if !retryable {
		return RetryNone
	}

	switch s.Seek {
	case SeekFast:
		s.Seek = SeekAccurate
		return RetryAccurateSeek
	case SeekAccurate:
		s.Seek = SeekBackoff
		return RetryBackoffSeek
	default:
		return RetryNone
	}
}
