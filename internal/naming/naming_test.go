package naming

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForVideo(t *testing.T) {
	tests := []struct {
		input string
		base  string
	}{
		{"/media/clip.mp4", "clip"},
		{"relative/My Movie (2019).mkv", "My Movie (2019)"},
		{"/media/archive.tar.mpg", "archive.tar"},
		{"/media/noext", "noext"},
		{"/media/.hidden", ".hidden"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			a := ForVideo(tt.input, "/thumbs")
			assert.Equal(t, tt.base, a.Base)
			assert.Equal(t, "/thumbs", a.Dir)
		})
	}
}

func TestArtifactPaths(t *testing.T) {
	a := ForVideo("/media/clip.mp4", "/thumbs")
	assert.Equal(t, "clip.png", a.SheetName())
	assert.Equal(t, "clip.vtt", a.VTTName())
	assert.Equal(t, filepath.Join("/thumbs", "clip.png"), a.SheetPath())
	assert.Equal(t, filepath.Join("/thumbs", "clip.vtt"), a.VTTPath())
	assert.Equal(t, filepath.Join("/thumbs", "clip_frames"), a.FramesDir())
}

func TestCollisionResolver(t *testing.T) {
	cr := NewCollisionResolver()

	a := cr.Resolve("/media/a/clip.mp4", ForVideo("/media/a/clip.mp4", "/out"))
	assert.Equal(t, "clip", a.Base)

	again := cr.Resolve("/media/a/clip.mp4", ForVideo("/media/a/clip.mp4", "/out"))
	assert.Equal(t, "clip", again.Base, "same owner keeps its name")

	b := cr.Resolve("/media/b/clip.mkv", ForVideo("/media/b/clip.mkv", "/out"))
	assert.Equal(t, "clip - dup1", b.Base)

	c := cr.Resolve("/media/c/clip.avi", ForVideo("/media/c/clip.avi", "/out"))
	assert.Equal(t, "clip - dup2", c.Base)

	other := cr.Resolve("/media/c/clip.avi", ForVideo("/media/c/clip.avi", "/elsewhere"))
	assert.Equal(t, "clip", other.Base, "different output dir does not collide")
}
