// Package ffmpeg extracts single frames with the ffmpeg binary and
// implements the pipeline's FrameSampler on top of it.
//
// Layout:
//   - builder.go: BuildFrameArgs, the per-frame command (via ffmpeg-go).
//   - executor.go: Execute, which runs ffmpeg and captures stderr.
//   - errors.go: stderr classification regexes.
//   - retry.go: RetryState, one seek-strategy change per failed attempt
//     (fast input seek, then accurate output seek, then a short backward
//     seek).
//   - sampler.go: Sampler, a bounded worker pool over the plan's timemarks.
package ffmpeg
