// Package sprite packs sampled frames into a single sheet image and writes
// the WebVTT file that maps each time interval to a cell of that sheet.
//
// Layout, cue construction, and VTT rendering are pure functions of the
// plan, so a rerun over the same frames reproduces byte-identical output.
// Pack is the only function that touches the filesystem.
package sprite
