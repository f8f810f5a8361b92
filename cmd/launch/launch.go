// cmd/launch/launch.go

// Package launch starts the game client.
package launch

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_cli"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/engine"
	"github.com/tes3mp-community/tes3mp-easy/pkg/flatpak"
	"github.com/tes3mp-community/tes3mp-easy/pkg/interaction"
	"github.com/tes3mp-community/tes3mp-easy/pkg/settings"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var LaunchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch TES3MP",
	Long: `Starts the game client, preferring the local engine install and
falling back to the flatpak app when present.`,
	RunE: easy_cli.Wrap(func(rc *easy_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return Run(rc)
	}),
}

// Run starts the server browser from the local install, or the flatpak
// app when only that is available.
func Run(rc *easy_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)
	s := settings.Load()

	browser := filepath.Join(engine.InstallDir(), "tes3mp-browser")
	if _, err := os.Stat(browser); err == nil {
		logger.Info("Launching TES3MP", zap.String("binary", browser))

		cmd := exec.CommandContext(rc.Ctx, browser)
		cmd.Dir = engine.InstallDir()
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil && rc.Ctx.Err() == nil {
			return cerr.Wrap(err, "game exited with an error")
		}
		return nil
	}

	if flatpak.Installed(rc) {
		if flatpak.AppInstalled(rc, s.FlatpakAppID) {
			logger.Info("Launching TES3MP via flatpak", zap.String("app", s.FlatpakAppID))
			return flatpak.RunApp(rc, s.FlatpakAppID)
		}
		if interaction.PromptYesNo("TES3MP is not installed. Install it from Flathub now?", true) {
			if err := flatpak.InstallApp(rc, s.FlatpakAppID); err != nil {
				return err
			}
			return flatpak.RunApp(rc, s.FlatpakAppID)
		}
	}

	return easy_err.NewUserError("TES3MP is not installed yet, run `tes3mp-easy setup` first")
}
