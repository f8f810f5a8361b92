// pkg/datafiles/openmw_test.go

package datafiles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateSingleConfigFreshFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "openmw", "openmw.cfg")

	require.NoError(t, updateSingleConfig(cfg, "/games/morrowind/Data Files", true))

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	assert.Equal(t, `data="/games/morrowind/Data Files"`, lines[0])
	assert.Contains(t, lines, "content=Morrowind.esm")
	assert.Contains(t, lines, "fallback-archive=Bloodmoon.bsa")
}

func TestUpdateSingleConfigStripsStaleLines(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "openmw.cfg")
	existing := strings.Join([]string{
		`data="/old/path"`,
		"content=Morrowind.esm",
		"content=tribunal.esm", // case-insensitive match
		"fallback-archive=Morrowind.bsa",
		"content=SomeMod.omwaddon",
		"fullscreen=true",
	}, "\n")
	require.NoError(t, os.WriteFile(cfg, []byte(existing), 0o644))

	require.NoError(t, updateSingleConfig(cfg, "/new/path", true))

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	content := string(data)

	assert.NotContains(t, content, "/old/path")
	assert.Contains(t, content, `data="/new/path"`)
	// mod and settings lines survive the rewrite
	assert.Contains(t, content, "content=SomeMod.omwaddon")
	assert.Contains(t, content, "fullscreen=true")
	// base content appears exactly once
	assert.Equal(t, 1, strings.Count(content, "content=Morrowind.esm"))
}

// The engine-local config inherits content from the global one; keeping
// content lines there double-registers every master file.
func TestUpdateSingleConfigLocalOmitsContent(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "openmw.cfg")

	require.NoError(t, updateSingleConfig(cfg, "/new/path", false))

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, fmt.Sprintf("data=%q", "/new/path"))
	assert.NotContains(t, content, "content=")
	assert.NotContains(t, content, "fallback-archive=")
}

func TestLinkOpenMWConfigsWritesBoth(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	rc := testContext(t)

	require.NoError(t, LinkOpenMWConfigs(rc, "/some/data"))

	globalCfg := filepath.Join(home, ".config", "openmw", "openmw.cfg")
	localCfg := filepath.Join(home, ".local", "share", "tes3mp", "openmw.cfg")

	global, err := os.ReadFile(globalCfg)
	require.NoError(t, err)
	local, err := os.ReadFile(localCfg)
	require.NoError(t, err)

	assert.Contains(t, string(global), "content=Morrowind.esm")
	assert.NotContains(t, string(local), "content=Morrowind.esm")
}
