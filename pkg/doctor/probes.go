// pkg/doctor/probes.go

package doctor

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/execute"
	"github.com/tes3mp-community/tes3mp-easy/pkg/process"
	"github.com/tes3mp-community/tes3mp-easy/pkg/tailscale"
)

// Probe names; the battery reports one result for each.
const (
	CheckReachability  = "Ping Reachability"
	CheckTunnelAddress = "Tunnel Address"
	CheckTunnelPing    = "Tailscale Tunnel"
	CheckPortFree      = "UDP Port"
)

var pingLatencyRe = regexp.MustCompile(`time[=<]([\d.]+)\s*ms`)

// ConnectionChecks builds the doctor battery for one target address.
func ConnectionChecks(rc *easy_io.RuntimeContext, target string, port, pingTimeoutSec int) []Check {
	return []Check{
		ReachabilityCheck(target, pingTimeoutSec),
		TunnelAddressCheck(rc, target),
		TunnelPingCheck(rc, target),
		PortOccupancyCheck(rc, port),
	}
}

// ReachabilityCheck sends a single ICMP echo to target.
func ReachabilityCheck(target string, timeoutSec int) Check {
	return Check{
		Name:        CheckReachability,
		Description: "target answers a standard ping",
		Required:    true,
		Run: func(ctx context.Context) (string, error) {
			out, err := execute.Run(ctx, execute.Options{
				Command: "ping",
				Args:    []string{"-c", "1", "-W", strconv.Itoa(timeoutSec), target},
				Capture: true,
				Timeout: time.Duration(timeoutSec+2) * time.Second,
			})
			if err != nil {
				return "", fmt.Errorf("no reply from %s within %ds", target, timeoutSec)
			}
			if m := pingLatencyRe.FindStringSubmatch(out); m != nil {
				return fmt.Sprintf("reply in %s ms", m[1]), nil
			}
			return "reply received", nil
		},
	}
}

// TunnelAddressCheck verifies the local node has a tunnel address, and
// flags the target when it is a plain LAN address. Handing a friend your
// LAN IP instead of the tunnel IP is the most common misconfiguration.
func TunnelAddressCheck(rc *easy_io.RuntimeContext, target string) Check {
	return Check{
		Name:        CheckTunnelAddress,
		Description: "local tailscale daemon has an assigned address",
		Required:    false,
		Run: func(ctx context.Context) (string, error) {
			ip, err := tailscale.IPv4(rc.WithCtx(ctx))
			if err != nil {
				return "", err
			}
			if target != "" && !tailscale.IsTailnetAddr(target) {
				return "", fmt.Errorf("this node is on the tunnel (%s) but %s is a local-only LAN address; ask your friend for their tailscale IP", ip, target)
			}
			return "tunnel address " + ip, nil
		},
	}
}

// TunnelPingCheck tests the encrypted path to a tailnet target and
// reports direct vs relayed. Skipped for LAN targets.
func TunnelPingCheck(rc *easy_io.RuntimeContext, target string) Check {
	return Check{
		Name:        CheckTunnelPing,
		Description: "encrypted tunnel to the target works",
		Required:    false,
		Run: func(ctx context.Context) (string, error) {
			if !tailscale.IsTailnetAddr(target) {
				return "", Skip("not a tailscale address, tunnel test does not apply")
			}
			if !tailscale.Installed() {
				return "", fmt.Errorf("tailscale CLI not found; install it to verify the tunnel")
			}
			res, err := tailscale.Ping(rc.WithCtx(ctx), target)
			if err != nil {
				return "", err
			}
			if res.Direct {
				return "connection is direct (fast)", nil
			}
			return "connection is relayed via DERP; playable but combat may lag", nil
		},
	}
}

// PortOccupancyCheck is the zombie check: a bound game port with a
// tes3mp-server attached and no client around means a stale server is
// squatting on the port.
func PortOccupancyCheck(rc *easy_io.RuntimeContext, port int) Check {
	return Check{
		Name:        fmt.Sprintf("%s %d", CheckPortFree, port),
		Description: "game port is available",
		Required:    false,
		Run: func(ctx context.Context) (string, error) {
			report := InspectPort(rc.WithCtx(ctx), port)
			if report.Free {
				return "port is free, ready to host", nil
			}
			if report.Stale {
				return "", fmt.Errorf("port %d is bound by a stale tes3mp-server (pid %d); terminate it before hosting", port, report.OwnerPID)
			}
			if report.OwnerPID != 0 {
				return fmt.Sprintf("port in use by %s (pid %d); a server is already running", report.OwnerName, report.OwnerPID), nil
			}
			return "", fmt.Errorf("port %d is bound by another process", port)
		},
	}
}

// PortReport is what the zombie check learned about the game port.
type PortReport struct {
	Port      int
	Free      bool
	OwnerPID  int
	OwnerName string
	Stale     bool // owner is a tes3mp-server with no live client
}

// InspectPort probes the UDP port by binding it, then attributes a bound
// port to its owning process where possible.
func InspectPort(rc *easy_io.RuntimeContext, port int) *PortReport {
	report := &PortReport{Port: port}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: port})
	if err == nil {
		conn.Close()
		report.Free = true
		return report
	}

	// Port is taken; see whether our own server binary holds it.
	if pids, err := process.FindExact(rc, "tes3mp-server"); err == nil && len(pids) > 0 {
		report.OwnerPID = pids[0]
		report.OwnerName = "tes3mp-server"
		report.Stale = !clientRunning(rc)
		return report
	}
	if pids, err := process.FindExact(rc, "tes3mp-server.x86_64"); err == nil && len(pids) > 0 {
		report.OwnerPID = pids[0]
		report.OwnerName = "tes3mp-server.x86_64"
		report.Stale = !clientRunning(rc)
	}
	return report
}

func clientRunning(rc *easy_io.RuntimeContext) bool {
	return process.IsRunning(rc, "tes3mp") || process.IsRunning(rc, "tes3mp.x86_64")
}
