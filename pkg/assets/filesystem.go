package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileSystem answers the two questions version resolution asks about a
// candidate file: can it be read, and when was it last modified.
type FileSystem interface {
	// Stat reports the modification time of name and whether it is readable.
	Stat(name string) (modTime time.Time, readable bool)
}

// OSFileSystem probes the host filesystem. A file is readable when it can be
// opened and is not a directory.
type OSFileSystem struct{}

// Stat implements FileSystem.
func (OSFileSystem) Stat(name string) (time.Time, bool) {
	if name == "" {
		return time.Time{}, false
	}
	f, err := os.Open(name)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// fsFileSystem adapts an fs.FS. Candidate names are OS paths, so they are
// converted to slash form and stripped of any leading "/" before Open.
type fsFileSystem struct {
	fsys fs.FS
}

// NewFSFileSystem returns a FileSystem backed by fsys, for example an
// embed.FS or fstest.MapFS. Pair it with a PathResolver whose roots are
// relative to fsys.
func NewFSFileSystem(fsys fs.FS) FileSystem {
	return &fsFileSystem{fsys: fsys}
}

func (f *fsFileSystem) Stat(name string) (time.Time, bool) {
	rel := strings.TrimPrefix(filepath.ToSlash(filepath.Clean(name)), "/")
	if rel == "" {
		rel = "."
	}
	if !fs.ValidPath(rel) {
		return time.Time{}, false
	}

	file, err := f.fsys.Open(rel)
	if err != nil {
		return time.Time{}, false
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
