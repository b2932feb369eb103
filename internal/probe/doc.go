// Package probe inspects a video with a single ffprobe JSON call and reduces
// the result to the metadata the thumbnail planner needs: duration, display
// dimensions, and frame rate.
//
// Files:
//   - prober.go: Prober (runs ffprobe), ParseJSON, wire types
//   - types.go: ProbeResult, VideoStream, VideoMetadata
//   - rotation.go: display-matrix handling for rotated (phone) footage
package probe
