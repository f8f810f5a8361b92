// pkg/flatpak/flatpak.go

// Package flatpak probes the Flatpak runtime and the engine app installed
// through it. Every probe answers with a bool; a missing flatpak binary is
// a degraded state to report, never a crash.
package flatpak

import (
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/execute"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const probeTimeout = 10 * time.Second

// InstallHint is the remediation surfaced when the runtime is absent.
const InstallHint = "install Flatpak with your distro's package manager (e.g. sudo apt install flatpak), then add Flathub: flatpak remote-add --if-not-exists flathub https://dl.flathub.org/repo/flathub.flatpakrepo"

// Installed reports whether the flatpak runtime is available at all.
func Installed(rc *easy_io.RuntimeContext) bool {
	if !execute.CommandExists("flatpak") {
		return false
	}
	_, err := execute.Run(rc.Ctx, execute.Options{
		Command: "flatpak",
		Args:    []string{"--version"},
		Capture: true,
		Timeout: probeTimeout,
	})
	return err == nil
}

// AppInstalled reports whether the given Flatpak app is installed.
func AppInstalled(rc *easy_io.RuntimeContext, appID string) bool {
	if !execute.CommandExists("flatpak") {
		return false
	}
	_, err := execute.Run(rc.Ctx, execute.Options{
		Command: "flatpak",
		Args:    []string{"info", appID},
		Capture: true,
		Timeout: probeTimeout,
	})
	return err == nil
}

// InstallApp installs an app from Flathub. Long-running; streams output.
func InstallApp(rc *easy_io.RuntimeContext, appID string) error {
	logger := otelzap.Ctx(rc.Ctx)

	if !execute.CommandExists("flatpak") {
		return easy_err.NewUserError("Flatpak is not installed. %s", InstallHint)
	}

	logger.Info("Installing Flatpak app", zap.String("app_id", appID))
	_, err := execute.Run(rc.Ctx, execute.Options{
		Command: "flatpak",
		Args:    []string{"install", "-y", "flathub", appID},
		Timeout: 30 * time.Minute,
	})
	if err != nil {
		return easy_err.NewUserError("Flatpak install of %s failed. Try it manually: flatpak install flathub %s", appID, appID)
	}
	return nil
}

// RunApp launches a Flatpak app. The call blocks until the app exits.
func RunApp(rc *easy_io.RuntimeContext, appID string) error {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Launching Flatpak app", zap.String("app_id", appID))

	_, err := execute.Run(rc.Ctx, execute.Options{
		Command: "flatpak",
		Args:    []string{"run", appID},
		Timeout: 24 * time.Hour, // a play session, not a probe
	})
	return err
}
