// cmd/root.go

package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_cli"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/interaction"
	"github.com/tes3mp-community/tes3mp-easy/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	// Subcommands
	"github.com/tes3mp-community/tes3mp-easy/cmd/doctor"
	"github.com/tes3mp-community/tes3mp-easy/cmd/host"
	"github.com/tes3mp-community/tes3mp-easy/cmd/launch"
	"github.com/tes3mp-community/tes3mp-easy/cmd/setup"
	"github.com/tes3mp-community/tes3mp-easy/cmd/status"
	"github.com/tes3mp-community/tes3mp-easy/cmd/version"
)

var debug bool

// RootCmd is the base command. With no subcommand it opens the
// interactive menu, the way most players use the tool.
var RootCmd = &cobra.Command{
	Use:   "tes3mp-easy",
	Short: "Get Morrowind multiplayer running without the fiddly parts",
	Long: `tes3mp-easy installs the TES3MP engine, finds and links your Morrowind
data files, hosts a dedicated server, and diagnoses connection problems
over a Tailscale tunnel.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: easy_cli.Wrap(func(rc *easy_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return runMenu(rc)
	}),
}

// runMenu is the interactive front door: health check first, then the
// main menu loop.
func runMenu(rc *easy_io.RuntimeContext) error {
	if err := status.Run(rc); err != nil {
		return err
	}

	options := []string{
		"Launch Game",
		"Host a Server",
		"Connection Doctor",
		"Re-run Health Check",
		"Exit",
	}

	for {
		fmt.Println()
		switch interaction.PromptSelect("TES3MP Manager", options) {
		case "Launch Game":
			return launch.Run(rc)
		case "Host a Server":
			if err := host.Run(rc); err != nil {
				return err
			}
		case "Connection Doctor":
			fmt.Println("Who are you trying to join?")
			target := interaction.PromptRequired("Their Tailscale IP (e.g. 100.101.50.5)")
			if target == "" {
				return nil
			}
			if err := doctor.Run(rc, target); err != nil {
				return err
			}
			interaction.PressEnterToContinue()
		case "Re-run Health Check":
			if err := status.Run(rc); err != nil {
				return err
			}
		default:
			fmt.Println("Goodbye!")
			return nil
		}
	}
}

// RegisterCommands adds all subcommands and global flags to the root.
func RegisterCommands() {
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "show full error details")
	RootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		// accept snake_case spellings of flags
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	RootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		easy_err.SetDebugMode(debug)
	}

	for _, subCmd := range []*cobra.Command{
		setup.SetupCmd,
		status.StatusCmd,
		doctor.DoctorCmd,
		host.HostCmd,
		launch.LaunchCmd,
		version.VersionCmd,
	} {
		RootCmd.AddCommand(subCmd)
	}
}

// Execute runs the CLI and maps errors to exit codes.
func Execute() {
	defer logger.Sync()

	if runtime.GOOS != "linux" {
		easy_err.ExitWithError("tes3mp-easy only runs on Linux", easy_err.ErrUnsupportedOS)
	}

	RegisterCommands()

	if err := RootCmd.Execute(); err != nil {
		if easy_err.IsExpectedUserError(err) {
			logger.L().Warn("Completed with user error", zap.Error(err))
			fmt.Fprintln(os.Stderr, "Notice:", err)
			os.Exit(1)
		}
		logger.L().Error("Execution error", zap.Error(err))
		easy_err.ExitWithError("something went wrong", err)
	}
}
