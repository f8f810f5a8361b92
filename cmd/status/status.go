// cmd/status/status.go

// Package status renders the health-check table and drives its fixes.
package status

import (
	"fmt"

	"github.com/tes3mp-community/tes3mp-easy/cmd/setup"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_cli"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/healthcheck"
	"github.com/tes3mp-community/tes3mp-easy/pkg/settings"
	"github.com/spf13/cobra"
)

var plain bool

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether everything needed to play is in place",
	Long: `Probes flatpak, the TES3MP engine, its system libraries, the data-files
link, tailscale, and the server port, and offers to fix what it can.`,
	RunE: easy_cli.Wrap(func(rc *easy_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		s := settings.Load()
		if plain {
			fmt.Println(healthcheck.Gather(rc, s).Render())
			return nil
		}
		return Run(rc)
	}),
}

func init() {
	StatusCmd.Flags().BoolVar(&plain, "no-fix", false, "print the table once without offering fixes")
}

// Run performs the interactive check loop, wiring the setup flow in as
// the fixer.
func Run(rc *easy_io.RuntimeContext) error {
	s := settings.Load()
	return healthcheck.RunInteractive(rc, s, func() error {
		return setup.Run(rc)
	})
}
