// pkg/server/run.go

package server

import (
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/settings"
	"github.com/tes3mp-community/tes3mp-easy/pkg/tailscale"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const publicIPTimeout = 5 * time.Second

// ConnectionInfo is what a host shares with players.
type ConnectionInfo struct {
	TailscaleIP string
	PublicIP    string
	Port        int
}

// Address renders the primary join address, preferring the tunnel.
func (c *ConnectionInfo) Address() string {
	ip := c.TailscaleIP
	if ip == "" {
		ip = c.PublicIP
	}
	if ip == "" {
		return ""
	}
	return net.JoinHostPort(ip, strconv.Itoa(c.Port))
}

// GatherConnectionInfo collects the addresses players can join on.
// Either lookup may come back empty; callers render what they get.
func GatherConnectionInfo(rc *easy_io.RuntimeContext, s *settings.Settings) *ConnectionInfo {
	logger := otelzap.Ctx(rc.Ctx)
	info := &ConnectionInfo{Port: s.ServerPort}

	if ip, err := tailscale.IPv4(rc); err == nil {
		info.TailscaleIP = ip
	} else {
		logger.Debug("No tailscale address for connection info", zap.Error(err))
	}

	if ip, err := publicIP(rc); err == nil {
		info.PublicIP = ip
	} else {
		logger.Debug("Public IP lookup failed", zap.Error(err))
	}

	return info
}

// publicIP asks ipify, for hosts running on a VPS without a tunnel.
func publicIP(rc *easy_io.RuntimeContext) (string, error) {
	req, err := http.NewRequestWithContext(rc.Ctx, http.MethodGet, "https://api.ipify.org", nil)
	if err != nil {
		return "", cerr.Wrap(err, "failed to build public IP request")
	}

	client := &http.Client{Timeout: publicIPTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", cerr.Wrap(err, "public IP lookup failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", cerr.Newf("public IP lookup failed: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", cerr.Wrap(err, "failed to read public IP response")
	}
	return strings.TrimSpace(string(body)), nil
}

// Start runs the server in the foreground with the bundled lib/ dir on
// LD_LIBRARY_PATH, wiring stdio through so the admin console works.
// Returns when the server exits or the context is cancelled.
func Start(rc *easy_io.RuntimeContext, root string) error {
	logger := otelzap.Ctx(rc.Ctx)

	bin, ok := BinaryPath(root)
	if !ok {
		return easy_err.NewUserError("server binary not found under %s, reinstall the server", root)
	}

	env := os.Environ()
	libDir := filepath.Join(root, "lib")
	if _, err := os.Stat(libDir); err == nil {
		if existing := os.Getenv("LD_LIBRARY_PATH"); existing != "" {
			env = append(env, "LD_LIBRARY_PATH="+libDir+":"+existing)
		} else {
			env = append(env, "LD_LIBRARY_PATH="+libDir)
		}
	}

	logger.Info("Starting server", zap.String("binary", bin))

	cmd := exec.CommandContext(rc.Ctx, bin)
	cmd.Dir = root
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if rc.Ctx.Err() != nil {
			logger.Info("Server stopped")
			return nil
		}
		return cerr.Wrap(err, "server exited with an error")
	}

	logger.Info("Server stopped")
	return nil
}
