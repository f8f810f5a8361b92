// pkg/xdg/xdg_test.go

package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsHonorXDGOverrides(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "cfg"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "cache"))

	assert.Equal(t, filepath.Join(base, "cfg", App, "config.yaml"), ConfigPath("config.yaml"))
	assert.Equal(t, filepath.Join(base, "state", App, "doctor.jsonl"), StatePath("doctor.jsonl"))
	assert.Equal(t, filepath.Join(base, "cache", App, "y"), CachePath("y"))
}

func TestPathsFallBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")

	assert.Equal(t, filepath.Join(home, ".config", App, "config.yaml"), ConfigPath("config.yaml"))
	assert.Equal(t, filepath.Join(home, ".local", "state", App, "log"), StatePath("log"))
}

func TestEnsureDirCreatesParent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "file.txt")
	require.NoError(t, EnsureDir(target))

	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(DirPermStandard), info.Mode().Perm())
}
