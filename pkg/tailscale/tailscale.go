// pkg/tailscale/tailscale.go

// Package tailscale wraps the tailscale CLI. The CLI is the stable
// interface here: it works identically against the system daemon and a
// userspace tailscaled with a custom socket, which the Go SDK does not.
package tailscale

import (
	"encoding/json"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Tailnet address ranges: the CGNAT IPv4 block and the Tailscale ULA
// prefix. A target outside both is a LAN address, not a tunnel address.
var (
	tailnet4 = netip.MustParsePrefix("100.64.0.0/10")
	tailnet6 = netip.MustParsePrefix("fd7a:115c:a1e0::/48")
)

const probeTimeout = 10 * time.Second

// Status is the subset of `tailscale status --json` the tool cares about.
type Status struct {
	Self struct {
		HostName string `json:"HostName"`
	} `json:"Self"`
	MagicDNSSuffix string `json:"MagicDNSSuffix"`
}

// PingResult describes one tunnel ping.
type PingResult struct {
	Direct bool // false means relayed via DERP
	Output string
}

// Installed reports whether the tailscale CLI resolves on PATH.
func Installed() bool {
	return execute.CommandExists("tailscale")
}

// SocketPath returns the userspace tailscaled socket when one exists, so
// every CLI call works in container and non-systemd setups too.
func SocketPath() string {
	p := filepath.Join(os.Getenv("HOME"), ".tailscale", "tailscaled.sock")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// IsTailnetAddr reports whether ip falls inside the tunnel address space.
func IsTailnetAddr(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return tailnet4.Contains(addr) || tailnet6.Contains(addr)
}

// Running reports whether the daemon answers at all.
func Running(rc *easy_io.RuntimeContext) bool {
	if !Installed() {
		return false
	}
	_, err := run(rc, probeTimeout, "status")
	return err == nil
}

// IPv4 returns this node's tunnel IPv4 address.
func IPv4(rc *easy_io.RuntimeContext) (string, error) {
	if !Installed() {
		return "", easy_err.NewUserError("Tailscale is not installed. Install it with: curl -fsSL https://tailscale.com/install.sh | sh")
	}

	out, err := run(rc, probeTimeout, "ip", "-4")
	if err != nil {
		return "", easy_err.NewUserError("Tailscale is not running. Start it with: sudo tailscale up")
	}

	ip := strings.TrimSpace(strings.Split(out, "\n")[0])
	if ip == "" {
		return "", easy_err.NewUserError("Tailscale reported no IPv4 address. Is the daemon connected?")
	}
	return ip, nil
}

// GetStatus fetches and parses the daemon status.
func GetStatus(rc *easy_io.RuntimeContext) (*Status, error) {
	out, err := run(rc, probeTimeout, "status", "--json")
	if err != nil {
		return nil, cerr.Wrap(err, "tailscale status failed")
	}

	var st Status
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		return nil, cerr.Wrap(err, "could not parse tailscale status output")
	}
	return &st, nil
}

// Ping tests the encrypted tunnel path to target and reports whether the
// connection is direct or relayed. Establishing a tunnel takes a moment,
// hence the generous timeout.
func Ping(rc *easy_io.RuntimeContext, target string) (*PingResult, error) {
	logger := otelzap.Ctx(rc.Ctx)

	out, err := run(rc, 15*time.Second, "ping", "--timeout=5s", "--c=1", target)
	if err != nil {
		summary := easy_err.ExtractSummary(out, 1)
		return nil, easy_err.NewUserError("tunnel to %s is broken: %s", target, summary)
	}

	result := &PingResult{
		Direct: !strings.Contains(out, "via DERP"),
		Output: strings.TrimSpace(out),
	}
	logger.Debug("Tunnel ping succeeded",
		zap.String("target", target),
		zap.Bool("direct", result.Direct))
	return result, nil
}

// Up connects the node, preferring systemd when it is present and falling
// back to a userspace tailscaled otherwise.
func Up(rc *easy_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)

	if hasSystemd(rc) {
		logger.Info("Starting tailscaled via systemd")
		if _, err := execute.Run(rc.Ctx, execute.Options{
			Command: "sudo", Args: []string{"systemctl", "start", "tailscaled"},
		}); err != nil {
			return cerr.Wrap(err, "failed to start tailscaled")
		}
		_, err := execute.Run(rc.Ctx, execute.Options{
			Command: "sudo", Args: []string{"tailscale", "up"},
		})
		return cerr.Wrap(err, "tailscale up failed")
	}

	// Non-systemd host: userspace networking with a private state dir.
	stateDir := filepath.Join(os.Getenv("HOME"), ".tailscale")
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return cerr.Wrap(err, "failed to create tailscale state dir")
	}

	logger.Info("Starting userspace tailscaled", zap.String("state_dir", stateDir))
	_, err := execute.Run(rc.Ctx, execute.Options{
		Command: "sudo",
		Args: []string{"tailscaled",
			"--state=" + filepath.Join(stateDir, "tailscaled.state"),
			"--socket=" + filepath.Join(stateDir, "tailscaled.sock"),
			"--tun=userspace-networking"},
		Timeout: 5 * time.Second,
	})
	if err != nil && execute.ExitCode(err) != -1 {
		return cerr.Wrap(err, "failed to start userspace tailscaled")
	}

	time.Sleep(3 * time.Second)

	_, err = execute.Run(rc.Ctx, execute.Options{
		Command: "sudo",
		Args:    append([]string{"tailscale"}, append(socketArgs(), "up")...),
	})
	return cerr.Wrap(err, "tailscale up failed")
}

// Install fetches Tailscale through the official install script.
func Install(rc *easy_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Installing Tailscale via the official install script")

	script, err := execute.Run(rc.Ctx, execute.Options{
		Command: "curl",
		Args:    []string{"-fsSL", "https://tailscale.com/install.sh"},
		Capture: true,
		Timeout: 2 * time.Minute,
	})
	if err != nil {
		return easy_err.NewUserError("could not fetch the Tailscale install script; check your internet connection")
	}

	tmp, err := os.CreateTemp("", "tailscale-install-*.sh")
	if err != nil {
		return cerr.Wrap(err, "failed to stage install script")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(script); err != nil {
		tmp.Close()
		return cerr.Wrap(err, "failed to stage install script")
	}
	tmp.Close()

	_, err = execute.Run(rc.Ctx, execute.Options{
		Command: "sh",
		Args:    []string{tmp.Name()},
		Timeout: 10 * time.Minute,
	})
	if err != nil {
		return easy_err.NewUserError("Tailscale installation failed; try manually: curl -fsSL https://tailscale.com/install.sh | sh")
	}
	return nil
}

func hasSystemd(rc *easy_io.RuntimeContext) bool {
	if !execute.CommandExists("systemctl") {
		return false
	}
	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{"is-system-running"},
		Capture: true,
		Timeout: 5 * time.Second,
	})
	return err == nil || strings.Contains(out, "running") || strings.Contains(out, "degraded")
}

func socketArgs() []string {
	if sock := SocketPath(); sock != "" {
		return []string{"--socket", sock}
	}
	return nil
}

func run(rc *easy_io.RuntimeContext, timeout time.Duration, args ...string) (string, error) {
	return execute.Run(rc.Ctx, execute.Options{
		Command: "tailscale",
		Args:    append(socketArgs(), args...),
		Capture: true,
		Timeout: timeout,
	})
}
