package probe

// DisplaySize returns the primary video's dimensions as shown to the viewer.
// ffmpeg autorotates decoded frames, so a stream stored as 1920x1080 with a
// 90 degree display matrix yields 1080x1920 thumbnails.
func (p *ProbeResult) DisplaySize() (int, int) {
	v := p.PrimaryVideo
	if v == nil {
		return 0, 0
	}
	if v.Rotation == 90 || v.Rotation == 270 {
		return v.Height, v.Width
	}
	return v.Width, v.Height
}

// normalizeRotation maps any multiple of 90 (including negatives reported
// by the display matrix, e.g. -90) onto 0, 90, 180 or 270. Anything else
// is treated as unrotated.
func normalizeRotation(deg int) int {
	if deg%90 != 0 {
		return 0
	}
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
