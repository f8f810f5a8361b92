// pkg/server/systemd.go

package server

import (
	"fmt"
	"os/user"
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	ServiceName = "tes3mp.service"
	servicePath = "/etc/systemd/system/tes3mp.service"

	systemctlTimeout = 30 * time.Second
)

const unitTemplate = `[Unit]
Description=TES3MP Server
After=network.target

[Service]
Type=simple
User=%s
WorkingDirectory=%s
ExecStart=%s
Restart=always
RestartSec=5

[Install]
WantedBy=multi-user.target
`

// InstallService writes a systemd unit for the server and enables it.
// Requires sudo; each step surfaces its own failure so the user can see
// which privileged command was refused.
func InstallService(rc *easy_io.RuntimeContext, root string) error {
	logger := otelzap.Ctx(rc.Ctx)

	if !execute.CommandExists("systemctl") {
		return easy_err.NewUserError("systemd is not available on this system, start the server in the foreground instead")
	}

	bin, ok := BinaryPath(root)
	if !ok {
		return easy_err.NewUserError("server binary not found under %s, reinstall the server", root)
	}

	u, err := user.Current()
	if err != nil {
		return cerr.Wrap(err, "failed to look up current user")
	}

	unit := fmt.Sprintf(unitTemplate, u.Username, root, bin)

	logger.Info("Installing systemd unit", zap.String("path", servicePath))
	if _, err := execute.Run(rc.Ctx, execute.Options{
		Command: "sudo",
		Args:    []string{"tee", servicePath},
		Stdin:   unit,
		Capture: true,
		Timeout: systemctlTimeout,
	}); err != nil {
		return cerr.Wrap(err, "failed to write unit file")
	}

	steps := [][]string{
		{"systemctl", "daemon-reload"},
		{"systemctl", "enable", ServiceName},
		{"systemctl", "restart", ServiceName},
	}
	for _, step := range steps {
		if _, err := execute.Run(rc.Ctx, execute.Options{
			Command: "sudo",
			Args:    step,
			Capture: true,
			Timeout: systemctlTimeout,
		}); err != nil {
			return cerr.Wrapf(err, "sudo %v failed", step)
		}
	}

	logger.Info("Service installed and running",
		zap.String("service", ServiceName),
		zap.String("status_hint", "sudo systemctl status tes3mp"))
	return nil
}

// ServiceActive reports whether the unit is currently running.
func ServiceActive(rc *easy_io.RuntimeContext) bool {
	if !execute.CommandExists("systemctl") {
		return false
	}
	_, err := execute.Run(rc.Ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{"is-active", "--quiet", ServiceName},
		Capture: true,
		Timeout: systemctlTimeout,
	})
	return err == nil
}
