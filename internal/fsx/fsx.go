// Package fsx provides atomic file replacement: data is written to a hidden
// temp file in the destination directory, synced, then renamed over the
// final name. Readers never observe a half-written file, and a batch of
// files is replaced all together or not at all.
package fsx

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// renameFunc is swapped in tests to simulate rename failures.
var renameFunc = os.Rename

// PathTypeConflictError reports that the destination exists but is not a
// regular file (for example a directory with the sheet's name).
type PathTypeConflictError struct {
	Path string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("destination %q is a %s, want regular file", e.Path, e.Got)
}

// File is one member of a WriteFilesAtomic batch.
type File struct {
	Name string
	Data []byte
}

// WriteFileAtomic writes data to dir/name, replacing any existing file.
// The directory is created if missing.
func WriteFileAtomic(dir, name string, data []byte) error {
	return WriteFilesAtomic(dir, File{Name: name, Data: data})
}

// WriteFilesAtomic replaces a set of files in dir together. Every file is
// staged and synced first; only then are they renamed into place, in
// order. If a rename fails, files already replaced get their previous
// contents back (or are removed if they did not exist), so the set is
// never left half old and half new.
func WriteFilesAtomic(dir string, files ...File) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	staged := make([]*stagedFile, 0, len(files))
	defer func() {
		for _, sf := range staged {
			sf.cleanup()
		}
	}()
	for _, f := range files {
		sf, err := stage(dir, f)
		if err != nil {
			return err
		}
		staged = append(staged, sf)
	}

	for i, sf := range staged {
		if err := renameFunc(sf.tmp, sf.dst); err != nil {
			for _, done := range staged[:i] {
				done.restore()
			}
			return err
		}
		sf.committed = true
	}
	_ = syncDir(dir)
	return nil
}

// stagedFile is a synced temp file waiting to be renamed over dst. backup
// is a hard link to the previous dst, when there was one.
type stagedFile struct {
	dst, tmp, backup string
	existed          bool
	committed        bool
}

func stage(dir string, f File) (*stagedFile, error) {
	dst := filepath.Join(dir, f.Name)
	existed := false
	if fi, err := os.Lstat(dst); err == nil {
		if !fi.Mode().IsRegular() {
			got := "non-regular file"
			if fi.IsDir() {
				got = "directory"
			}
			return nil, &PathTypeConflictError{Path: dst, Got: got}
		}
		existed = true
	}

	tmp, err := os.CreateTemp(dir, "."+f.Name+".tmp-*")
	if err != nil {
		return nil, err
	}
	sf := &stagedFile{dst: dst, tmp: tmp.Name(), existed: existed}
	if err := writeSynced(tmp, f.Data); err != nil {
		_ = os.Remove(sf.tmp)
		return nil, err
	}

	if existed {
		sf.backup = sf.tmp + ".prev"
		if err := os.Link(dst, sf.backup); err != nil {
			// No hard links here: the file can still be written, it just
			// cannot be rolled back.
			sf.backup = ""
		}
	}
	return sf, nil
}

func writeSynced(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// restore undoes a committed rename. A replaced file without a backup
// keeps its new contents.
func (sf *stagedFile) restore() {
	switch {
	case !sf.committed:
	case sf.backup != "":
		if os.Rename(sf.backup, sf.dst) == nil {
			sf.backup = ""
		}
	case !sf.existed:
		_ = os.Remove(sf.dst)
	}
}

func (sf *stagedFile) cleanup() {
	if !sf.committed {
		_ = os.Remove(sf.tmp)
	}
	if sf.backup != "" {
		_ = os.Remove(sf.backup)
	}
}

// syncDir is best-effort; directory fsync semantics vary by platform.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
