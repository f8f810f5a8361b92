// pkg/settings/settings_test.go

package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s := Load()
	assert.Equal(t, ServerPort, s.ServerPort)
	assert.Equal(t, EngineVersion, s.EngineVersion)
	assert.Equal(t, FlatpakAppID, s.FlatpakAppID)
	assert.Contains(t, s.MarkerFiles, "Morrowind.esm")
	assert.Equal(t, 5, s.PingTimeoutSec)
	assert.NotEmpty(t, s.ClientURL)
	assert.NotEmpty(t, s.ServerURL)
}

func TestLoadReadsSettingsFile(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)

	dir := filepath.Join(cfgHome, "tes3mp-easy")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"),
		[]byte("server_port: 26000\nping_timeout_sec: 2\n"), 0o644))

	s := Load()
	assert.Equal(t, 26000, s.ServerPort)
	assert.Equal(t, 2, s.PingTimeoutSec)
	// untouched keys keep their defaults
	assert.Equal(t, EngineVersion, s.EngineVersion)
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TES3MP_EASY_SERVER_PORT", "27000")

	s := Load()
	assert.Equal(t, 27000, s.ServerPort)
}
