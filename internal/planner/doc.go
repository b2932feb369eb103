// Package planner turns a sampling policy, a size policy and probed video
// metadata into an immutable SamplingPlan: the ordered timemarks to grab and
// the concrete thumbnail size. Everything here is pure; no I/O.
//
// Files:
//   - types.go: SamplingPolicy, SizePolicy, Timemark, ThumbnailSize, SamplingPlan, Frame
//   - timemarks.go: Timemarks (the timemark planner)
//   - geometry.go: ResolveSize (the geometry resolver)
//   - planner.go: BuildPlan, PairFrames
package planner
