// pkg/tailscale/tailscale_test.go

package tailscale

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTailnetAddr(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{"cgnat range start", "100.64.0.1", true},
		{"typical tailnet v4", "100.101.50.5", true},
		{"cgnat range end", "100.127.255.254", true},
		{"below cgnat range", "100.63.255.255", false},
		{"above cgnat range", "100.128.0.1", false},
		{"lan address", "192.168.1.50", false},
		{"loopback", "127.0.0.1", false},
		{"tailscale v6", "fd7a:115c:a1e0::1234", true},
		{"other ula v6", "fd00::1", false},
		{"hostname not an ip", "my-laptop", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTailnetAddr(tt.ip))
		})
	}
}

func TestStatusParsing(t *testing.T) {
	// Shape of `tailscale status --json`, trimmed to what we read.
	raw := `{
		"MagicDNSSuffix": "tail1234.ts.net",
		"Self": {"HostName": "my-laptop"}
	}`

	var st Status
	require.NoError(t, json.Unmarshal([]byte(raw), &st))
	assert.Equal(t, "my-laptop", st.Self.HostName)
	assert.Equal(t, "tail1234.ts.net", st.MagicDNSSuffix)
}

func TestSocketPathPrefersUserspace(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	// No userspace socket: the system default applies.
	assert.Equal(t, "", SocketPath())

	sock := filepath.Join(home, ".tailscale", "tailscaled.sock")
	require.NoError(t, os.MkdirAll(filepath.Dir(sock), 0o700))
	require.NoError(t, os.WriteFile(sock, nil, 0o600))

	assert.Equal(t, sock, SocketPath())
}
