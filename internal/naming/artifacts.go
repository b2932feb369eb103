package naming

import (
	"path/filepath"
	"strings"
)

// Artifacts names the files produced for one video.
type Artifacts struct {
	Dir  string // output directory
	Base string // file stem shared by sheet, VTT, and frames dir
}

// ForVideo returns the artifact names for input under outputDir: the
// video's basename without its extension.
func ForVideo(input, outputDir string) Artifacts {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return Artifacts{Dir: outputDir, Base: stem}
}

// Key identifies the artifact set for collision tracking.
func (a Artifacts) Key() string { return filepath.Join(a.Dir, a.Base) }

// SheetName is the sheet file name, relative to Dir.
func (a Artifacts) SheetName() string { return a.Base + ".png" }

// VTTName is the WebVTT file name, relative to Dir.
func (a Artifacts) VTTName() string { return a.Base + ".vtt" }

// SheetPath is the full sheet path.
func (a Artifacts) SheetPath() string { return filepath.Join(a.Dir, a.SheetName()) }

// VTTPath is the full WebVTT path.
func (a Artifacts) VTTPath() string { return filepath.Join(a.Dir, a.VTTName()) }

// FramesDir is where kept frames are moved.
func (a Artifacts) FramesDir() string { return filepath.Join(a.Dir, a.Base+"_frames") }
