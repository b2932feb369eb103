// Package naming derives output file names for a video and resolves
// collisions when several inputs in one batch share a basename.
//
// For an input "/media/a/clip.mp4" and output dir "/thumbs":
//
//	/thumbs/clip.png          sprite sheet
//	/thumbs/clip.vtt          WebVTT cues
//	/thumbs/clip_frames/      individual frames (only with --keep-frames)
//
// A second "/media/b/clip.mkv" in the same run becomes "clip - dup1".
package naming
