// pkg/server/configure_test.go

package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stockConfig = `# TES3MP server settings
destinationAddress = 0.0.0.0
port = 25565
hostname = My TES3MP server
password =
maximumPlayers = 64
`

func testContext(t *testing.T) *easy_io.RuntimeContext {
	t.Helper()
	return easy_io.NewContext(context.Background(), "test")
}

func writeStockConfig(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFile), []byte(stockConfig), 0o644))
	return root
}

func TestConfigureRewritesHostnameAndPassword(t *testing.T) {
	rc := testContext(t)
	root := writeStockConfig(t)

	require.NoError(t, Configure(rc, root, "Weekend Server", "hunter2"))

	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "hostname = Weekend Server")
	assert.Contains(t, content, "password = hunter2")
	assert.NotContains(t, content, "My TES3MP server")
	// untouched settings survive
	assert.Contains(t, content, "maximumPlayers = 64")
}

// A $ in a user-supplied value must land in the file verbatim, not get
// expanded as a capture-group reference.
func TestConfigureDollarSignStaysLiteral(t *testing.T) {
	rc := testContext(t)
	root := writeStockConfig(t)

	require.NoError(t, Configure(rc, root, "Cash $$ Server", "pa$$word$1"))

	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "hostname = Cash $$ Server")
	assert.Contains(t, content, "password = pa$$word$1")
}

func TestConfigureEmptyPasswordClearsLine(t *testing.T) {
	rc := testContext(t)
	root := writeStockConfig(t)

	require.NoError(t, Configure(rc, root, "Open Server", "secret"))
	require.NoError(t, Configure(rc, root, "Open Server", ""))

	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "password = \n")
	assert.NotContains(t, string(data), "secret")
}

func TestConfigureMissingConfigIsUserError(t *testing.T) {
	rc := testContext(t)

	err := Configure(rc, t.TempDir(), "Name", "")
	require.Error(t, err)
	assert.True(t, easy_err.IsExpectedUserError(err))
}

func TestCurrentHostname(t *testing.T) {
	root := writeStockConfig(t)
	assert.Equal(t, "My TES3MP server", CurrentHostname(root))

	// fallback when the file is absent
	assert.Equal(t, "TES3MP Server", CurrentHostname(t.TempDir()))
}

func TestRootFindsInstallAcrossCasings(t *testing.T) {
	for _, dirName := range []string{"TES3MP-Server-0.8.1", "tes3mp-server-linux"} {
		t.Run(dirName, func(t *testing.T) {
			base := t.TempDir()
			s := &settings.Settings{ServerDir: base}

			assert.Empty(t, Root(s))

			require.NoError(t, os.Mkdir(filepath.Join(base, dirName), 0o755))
			assert.Equal(t, filepath.Join(base, dirName), Root(s))
		})
	}
}

func TestBinaryPathPrefersVersionedName(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "tes3mp-server"), []byte{}, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "tes3mp-server.x86_64"), []byte{}, 0o755))

	bin, ok := BinaryPath(root)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "tes3mp-server.x86_64"), bin)

	_, ok = BinaryPath(t.TempDir())
	assert.False(t, ok)
}
