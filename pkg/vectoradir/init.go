package vectoradir

import (
	"fmt"
	"os"
)

// settings.yaml holds API keys, so it is ignored alongside local/.
const gitignoreContent = "local/\nsettings.yaml\n"

// EnsureStructure creates the root, local/captures/ and .gitignore if they are
// missing. Existing files are left untouched, so it is safe to call repeatedly.
func EnsureStructure(d Dir) error {
	if err := os.MkdirAll(d.CapturesDir(), 0o750); err != nil {
		return fmt.Errorf("vectoradir: create captures dir: %w", err)
	}

	if err := ensureGitignore(d); err != nil {
		return fmt.Errorf("vectoradir: gitignore: %w", err)
	}

	return nil
}

func ensureGitignore(d Dir) error {
	path := d.GitignorePath()

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(gitignoreContent), 0o600)
}
