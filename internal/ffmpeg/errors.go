package ffmpeg

import "regexp"

// Pre-compiled regexes for classifying ffmpeg stderr output. Retryable
// patterns lead [RetryState.Advance] to try the next seek strategy; fatal
// patterns stop retries immediately.
var (
	reEmptyOutput = regexp.MustCompile(
		`Output file is empty, nothing was encoded|` +
			`Output file #\d+ does not contain any stream`)

	reSeekIssue = regexp.MustCompile(
		`(?i)could not seek|error while seeking|seek(ing)? .*failed|` +
			`stream \d+, offset 0x[0-9a-f]+: partial file`)

	reDecodeIssue = regexp.MustCompile(
		`(?i)Invalid NAL unit|error while decoding|decode_slice_header error|` +
			`missing reference picture|no frame!|corrupt (input|decoded frame)`)

	reInputFatal = regexp.MustCompile(
		`No such file or directory|Permission denied|` +
			`Invalid data found when processing input|` +
			`does not contain any stream`)
)

// MatchEmptyOutput reports whether ffmpeg finished without encoding a frame
// (typically an offset at or past the last decodable frame).
func MatchEmptyOutput(stderr string) bool {
	return reEmptyOutput.MatchString(stderr)
}

// MatchSeekIssue reports whether stderr contains a seek failure.
func MatchSeekIssue(stderr string) bool {
	return reSeekIssue.MatchString(stderr)
}

// MatchDecodeIssue reports whether stderr contains a decoder error around
// the seek point.
func MatchDecodeIssue(stderr string) bool {
	return reDecodeIssue.MatchString(stderr)
}

// MatchInputFatal reports whether the input itself is unusable, in which
// case no seek strategy will help.
func MatchInputFatal(stderr string) bool {
	return reInputFatal.MatchString(stderr) && !reEmptyOutput.MatchString(stderr)
}
