package assets

import (
	"path"
	"path/filepath"
)

// PathResolver maps web paths onto the application's directories.
type PathResolver interface {
	// PublicPath returns the filesystem location of rel under the public
	// web root.
	PublicPath(rel string) string

	// BasePath returns the application base directory. Extra search paths
	// are resolved against it.
	BasePath() string
}

// DirPaths is a PathResolver over two plain directories.
type DirPaths struct {
	// Base is the application base directory (default ".").
	Base string

	// Public is the public web root. Relative values are joined with Base
	// (default "public").
	Public string
}

// PublicPath implements PathResolver. rel is cleaned as an absolute web path
// first, so ".." segments cannot climb out of the public root.
func (d DirPaths) PublicPath(rel string) string {
	return filepath.Join(d.publicDir(), webToOS(rel))
}

// BasePath implements PathResolver.
func (d DirPaths) BasePath() string {
	if d.Base == "" {
		return "."
	}
	return d.Base
}

func (d DirPaths) publicDir() string {
	public := d.Public
	if public == "" {
		public = "public"
	}
	if filepath.IsAbs(public) {
		return public
	}
	return filepath.Join(d.BasePath(), public)
}

// webToOS cleans a slash-separated web path and converts it into a relative
// OS path.
func webToOS(rel string) string {
	clean := path.Clean("/" + rel)
	return filepath.FromSlash(clean[1:])
}
