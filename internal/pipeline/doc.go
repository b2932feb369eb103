// Package pipeline turns one video into a sprite sheet plus WebVTT file,
// and runs that over a single file or a discovered directory of videos.
//
// Per video ([Generator.Generate]):
//
//	validate options → probe metadata → build plan → sample frames →
//	pack sheet and cues → (optionally) keep frames
//
// Each stage consumes the previous stage's value and returns a new one;
// nothing is mutated in place. The first error aborts the video and is
// returned unchanged (ConfigError, MediaError, SamplingError, PackingError).
//
// Batch ([Run]): discover → resolve output names → skip-existing →
// Generate → upload → stats. Per-file errors are logged and counted.
package pipeline
