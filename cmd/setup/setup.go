// cmd/setup/setup.go

// Package setup implements the client setup flow: engine install,
// data-files configuration, and openmw.cfg linking.
package setup

import (
	"errors"
	"fmt"

	"github.com/tes3mp-community/tes3mp-easy/pkg/config"
	"github.com/tes3mp-community/tes3mp-easy/pkg/datafiles"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_cli"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/engine"
	"github.com/tes3mp-community/tes3mp-easy/pkg/interaction"
	"github.com/tes3mp-community/tes3mp-easy/pkg/settings"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var SetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install the TES3MP engine and link your Morrowind data files",
	Long: `Downloads the pinned TES3MP release if it is not already installed,
asks where your Morrowind Data Files live, validates the folder, remembers
it, and links it into the openmw configs so the game can find it.`,
	RunE: easy_cli.Wrap(func(rc *easy_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return Run(rc)
	}),
}

// Run drives the whole client setup. Reused by the interactive menu and
// the health-check auto-fix loop.
func Run(rc *easy_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)
	s := settings.Load()

	if engine.NeedsInstall(rc, s) {
		if err := engine.Install(rc, s); err != nil {
			return err
		}
	} else {
		logger.Info("Engine already installed", zap.String("dir", engine.InstallDir()))
	}

	if missing := engine.MissingLibraries(rc); len(missing) > 0 {
		logger.Warn("Engine binary is missing system libraries",
			zap.Strings("missing", missing),
			zap.String("hint", engine.InstallHint(missing)))
	}

	// A remembered path that still validates just gets relinked, so the
	// openmw configs stay in sync after engine reinstalls.
	if rec, err := config.Load(rc); err == nil {
		if datafiles.Validate(rc, rec.DataFilesPath, s.MarkerFiles) == nil {
			logger.Info("Using remembered data path", zap.String("path", rec.DataFilesPath))
			if !interaction.PromptYesNo("Keep using "+rec.DataFilesPath+"?", true) {
				return configureDataPath(rc, s)
			}
			return datafiles.ValidateAndRemember(rc, rec.DataFilesPath, s.MarkerFiles)
		}
		logger.Warn("Remembered data path no longer validates, reconfiguring",
			zap.String("path", rec.DataFilesPath))
	} else if !errors.Is(err, config.ErrNotFound) {
		return err
	}

	return configureDataPath(rc, s)
}

// configureDataPath prompts until a folder validates or the user bails.
func configureDataPath(rc *easy_io.RuntimeContext, s *settings.Settings) error {
	fmt.Println("We need to know where your Morrowind Data Files are located.")
	fmt.Println("Common paths: ~/Games/Morrowind/Data Files")

	for {
		path := interaction.PromptRequired("Enter full path to 'Data Files'")
		if path == "" {
			return easy_err.NewUserError("no path entered, setup aborted")
		}

		err := datafiles.ValidateAndRemember(rc, path, s.MarkerFiles)
		if err == nil {
			fmt.Println("Setup complete. You can play now.")
			return nil
		}
		if !datafiles.IsRejected(err) {
			return err
		}

		fmt.Println(err.Error())
		if !interaction.PromptYesNo("Try again?", true) {
			return easy_err.NewExpectedError(err)
		}
	}
}
