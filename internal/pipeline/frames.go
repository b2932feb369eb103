package pipeline

import (
	"io"
	"os"
	"path/filepath"

	"github.com/backmassage/thumbvtt/internal/planner"
)

// keepFrames moves the sampled frames from workDir to dst, replacing any
// previous frames dir. A rename is tried first; across filesystems the
// frames are copied instead.
func keepFrames(workDir, dst string, frames []planner.Frame) error {
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(workDir, dst); err == nil {
		return nil
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	for _, f := range frames {
		if err := copyFile(f.Path, filepath.Join(dst, filepath.Base(f.Path))); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
