// Package vectoradir encapsulates all path knowledge for the .vectora/
// directory. It provides a Dir value object with accessors for the settings
// file and the local runtime state paths.
package vectoradir

import (
	"os"
	"path/filepath"
)

// DefaultName is the directory name used when none is given.
const DefaultName = ".vectora"

// Dir is a value object that resolves paths within a .vectora/ directory.
type Dir struct {
	root string
}

// New creates a Dir rooted at the given path. The path is converted to an
// absolute path. No I/O is performed; use EnsureStructure to create the
// directory layout.
func New(root string) Dir {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	return Dir{root: abs}
}

// Root returns the absolute path to the .vectora/ directory.
func (d Dir) Root() string { return d.root }

// SettingsPath returns the path to the persisted settings record.
func (d Dir) SettingsPath() string { return filepath.Join(d.root, "settings.yaml") }

// LocalDir returns the path to the local (gitignored) runtime state directory.
func (d Dir) LocalDir() string { return filepath.Join(d.root, "local") }

// CapturesDir returns the path where screen captures are kept.
func (d Dir) CapturesDir() string { return filepath.Join(d.root, "local", "captures") }

// GitignorePath returns the path to the .gitignore file inside .vectora/.
func (d Dir) GitignorePath() string { return filepath.Join(d.root, ".gitignore") }

// Exists reports whether the .vectora/ root directory exists on disk.
func (d Dir) Exists() bool {
	info, err := os.Stat(d.root)

	return err == nil && info.IsDir()
}
