package vectoradir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_PathAccessors(t *testing.T) {
	d := New("/project/.vectora")

	assert.Equal(t, "/project/.vectora", d.Root())
	assert.Equal(t, "/project/.vectora/settings.yaml", d.SettingsPath())
	assert.Equal(t, "/project/.vectora/local", d.LocalDir())
	assert.Equal(t, "/project/.vectora/local/captures", d.CapturesDir())
	assert.Equal(t, "/project/.vectora/.gitignore", d.GitignorePath())
}

func TestDir_Exists(t *testing.T) {
	tmp := t.TempDir()

	assert.False(t, New(filepath.Join(tmp, "missing")).Exists())
	assert.True(t, New(tmp).Exists())
}

func TestEnsureStructure(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), ".vectora"))
	require.NoError(t, EnsureStructure(d))

	info, err := os.Stat(d.CapturesDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := os.ReadFile(d.GitignorePath())
	require.NoError(t, err)
	assert.Equal(t, "local/\nsettings.yaml\n", string(data))
}

func TestEnsureStructure_Idempotent(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), ".vectora"))
	require.NoError(t, EnsureStructure(d))

	custom := "local/\ncustom-entry\n"
	require.NoError(t, os.WriteFile(d.GitignorePath(), []byte(custom), 0o600))

	require.NoError(t, EnsureStructure(d))

	data, err := os.ReadFile(d.GitignorePath())
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}
