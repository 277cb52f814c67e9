// Package tempdir provides the run-scoped temporary directory used for
// compiler stderr capture and for dumped unit content.
package tempdir

import (
	"fmt"
	"os"
	"strings"
)

// Dir is one run's temporary directory. Files created in it get unique
// names, so concurrent runs and repeated dumps never collide.
type Dir struct {
	path string
}

// New creates a fresh run-scoped directory under the system temp dir.
func New(prefix string) (*Dir, error) {
	path, err := os.MkdirTemp("", prefix+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// CreateFile creates a uniquely-named file in the directory from a
// suggested base name and extension (extension includes the leading dot).
func (d *Dir) CreateFile(base, ext string) (*os.File, error) {
	f, err := os.CreateTemp(d.path, base+"-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file %s*%s: %w", base, ext, err)
	}
	return f, nil
}

// Flatten turns a source path into a filesystem-safe token: path
// separators become underscores and "." / ".." segments are dropped.
// "src/foo/bar.hack" becomes "src_foo_bar.hack".
func Flatten(path string) string {
	var parts []string
	for _, seg := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		switch seg {
		case "", ".", "..":
			continue
		}
		parts = append(parts, seg)
	}
	if len(parts) == 0 {
		return "unit"
	}
	return strings.Join(parts, "_")
}
