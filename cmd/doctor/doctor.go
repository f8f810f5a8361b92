// cmd/doctor/doctor.go

// Package doctor runs the connection diagnostics battery against a peer.
package doctor

import (
	"fmt"

	"github.com/tes3mp-community/tes3mp-easy/pkg/doctor"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_cli"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/interaction"
	"github.com/tes3mp-community/tes3mp-easy/pkg/process"
	"github.com/tes3mp-community/tes3mp-easy/pkg/settings"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	stylePass = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00"))
	styleFail = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000"))
	styleSkip = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	styleBold = lipgloss.NewStyle().Bold(true)
)

var DoctorCmd = &cobra.Command{
	Use:   "doctor <target-ip>",
	Short: "Diagnose why you cannot reach a server",
	Long: `Runs the connection battery against a peer: ICMP reachability, tunnel
address, tailscale ping (direct vs relay), and whether the game port on this
machine is held by a stale server process. Every probe runs regardless of
earlier failures, and the run is appended to doctor.jsonl for sharing.`,
	Args: cobra.ExactArgs(1),
	RunE: easy_cli.Wrap(func(rc *easy_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return Run(rc, args[0])
	}),
}

// Run executes the battery, prints results and verdict, offers zombie
// cleanup, and persists the report.
func Run(rc *easy_io.RuntimeContext, target string) error {
	logger := otelzap.Ctx(rc.Ctx)
	s := settings.Load()

	fmt.Println(styleBold.Render("Testing connection to " + target))
	fmt.Println()

	checks := doctor.ConnectionChecks(rc, target, s.ServerPort, s.PingTimeoutSec)
	results := doctor.RunChecks(rc, checks)

	for _, r := range results {
		var line string
		switch r.Status {
		case doctor.StatusPass:
			line = stylePass.Render("✅ " + r.Name)
		case doctor.StatusSkipped:
			line = styleSkip.Render("·  " + r.Name + " (skipped)")
		default:
			line = styleFail.Render("❌ " + r.Name)
		}
		if r.Detail != "" {
			line += "  " + r.Detail
		}
		fmt.Println(line)
	}

	fmt.Println()
	fmt.Println(styleBold.Render(doctor.Verdict(results, target)))

	offerZombieCleanup(rc, s.ServerPort)

	report := doctor.NewReport(target, results)
	if err := report.Append(rc); err != nil {
		logger.Warn("Could not save doctor report", zap.Error(err))
	}
	return nil
}

// offerZombieCleanup asks before the battery's only side effect: killing
// a stale server still squatting on the game port.
func offerZombieCleanup(rc *easy_io.RuntimeContext, port int) {
	logger := otelzap.Ctx(rc.Ctx)

	r := doctor.InspectPort(rc, port)
	if r.Free || !r.Stale || r.OwnerPID == 0 {
		return
	}

	fmt.Printf("\n%s (PID %d) is holding port %d with no game running.\n",
		r.OwnerName, r.OwnerPID, port)
	if !interaction.PromptYesNo("Terminate it?", false) {
		return
	}

	if err := process.Terminate(rc, r.OwnerPID); err != nil {
		logger.Warn("Could not terminate stale server",
			zap.Int("pid", r.OwnerPID), zap.Error(err))
		return
	}
	fmt.Println("Stale server terminated, the port is free again.")
}
