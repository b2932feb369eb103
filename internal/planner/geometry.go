package planner

import (
	"math"

	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/probe"
)

// ResolveSize derives the concrete thumbnail size.
//
//   - Nothing requested: the native (display) dimensions.
//   - Width only: height = width * nativeH / nativeW, rounded half up.
//   - Height only: the symmetric computation.
//   - Both: used verbatim; the caller's explicit choice wins over aspect ratio.
func ResolveSize(size SizePolicy, meta probe.VideoMetadata) (ThumbnailSize, error) {
	if size.Width < 0 || size.Height < 0 {
		return ThumbnailSize{}, failure.Config("thumbnailSize", "dimensions must be positive (got %dx%d)", size.Width, size.Height)
	}
	if size.Width > 0 && size.Height > 0 {
		return ThumbnailSize{Width: size.Width, Height: size.Height}, nil
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return ThumbnailSize{}, failure.Config("thumbnailSize", "video dimensions unknown; set both width and height")
	}

	switch {
	case size.Width > 0:
		h := scale(size.Width, meta.Height, meta.Width)
		return ThumbnailSize{Width: size.Width, Height: h}, nil
	case size.Height > 0:
		w := scale(size.Height, meta.Width, meta.Height)
		return ThumbnailSize{Width: w, Height: size.Height}, nil
	default:
		return ThumbnailSize{Width: meta.Width, Height: meta.Height}, nil
	}
}

// scale returns round-half-up(v * num / den), never below one pixel.
func scale(v, num, den int) int {
	n := int(math.Floor(float64(v)*float64(num)/float64(den) + 0.5))
	if n < 1 {
		return 1
	}
	return n
}
