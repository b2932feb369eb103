package pipeline

import (
	"io/fs"
	"path/filepath"
	"os"
	"sort"
	"strings"
)

// Video file extensions picked up from input directories (lowercase, with
// leading dot).
var mediaExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".ts":   true,
	".m2ts": true,
	".mpg":  true,
	".mpeg": true,
	".ogv":  true,
}

// IsVideoFile reports whether path has a recognized video extension.
func IsVideoFile(path string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(path))]
}

// Inputs returns the videos to process for input: the input itself when
// it is a file, otherwise the result of [Discover].
func Inputs(input string) ([]string, bool, error) {
	fi, err := os.Stat(input)
	if err != nil {
		return nil, false, err
	}
	if !fi.IsDir() {
		return []string{input}, false, nil
	}
	files, err := Discover(input)
	return files, true, err
}

// Discover walks inputDir, collects files with video extensions, prunes
// directories named "extras" or ending in "_frames" (case-insensitive),
// and returns the paths sorted lexicographically for deterministic
// processing order.
func Discover(inputDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := strings.ToLower(d.Name())
			if name == "extras" || (path != inputDir && strings.HasSuffix(name, "_frames")) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsVideoFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
