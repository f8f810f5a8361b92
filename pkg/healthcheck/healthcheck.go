// pkg/healthcheck/healthcheck.go

// Package healthcheck renders the pre-flight status table and walks the
// user through fixing what it finds, re-checking after each fix.
package healthcheck

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tes3mp-community/tes3mp-easy/pkg/config"
	"github.com/tes3mp-community/tes3mp-easy/pkg/datafiles"
	"github.com/tes3mp-community/tes3mp-easy/pkg/doctor"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/engine"
	"github.com/tes3mp-community/tes3mp-easy/pkg/execute"
	"github.com/tes3mp-community/tes3mp-easy/pkg/flatpak"
	"github.com/tes3mp-community/tes3mp-easy/pkg/interaction"
	"github.com/tes3mp-community/tes3mp-easy/pkg/settings"
	"github.com/tes3mp-community/tes3mp-easy/pkg/tailscale"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Row is one component line in the status table.
type Row struct {
	Component string
	State     State
	Status    string
	Action    string
}

// Report is a full snapshot of system readiness.
type Report struct {
	Rows []Row

	HasFlatpak  bool
	HasEngine   bool
	MissingLibs []string
	DataLinked  bool
	DataStored  bool
	PortFree    bool
}

// Healthy reports whether a play session can start as-is.
func (r *Report) Healthy() bool {
	return r.HasFlatpak && r.HasEngine && len(r.MissingLibs) == 0 && r.DataLinked
}

// Gather probes every component once and classifies the results.
func Gather(rc *easy_io.RuntimeContext, s *settings.Settings) *Report {
	r := &Report{}

	r.HasFlatpak = flatpak.Installed(rc)
	if r.HasFlatpak {
		r.addRow("Flatpak System", StateOK, "Installed", "")
	} else {
		r.addRow("Flatpak System", StateBad, "Missing", "Install Flatpak")
	}

	r.HasEngine = engine.Installed()
	switch {
	case r.HasEngine:
		r.addRow("TES3MP Engine", StateOK, "Installed", "")
	case r.HasFlatpak:
		r.addRow("TES3MP Engine", StateBad, "Missing", "Run Setup")
	default:
		r.addRow("TES3MP Engine", StateBad, "Missing", "Fix Flatpak First")
	}

	r.MissingLibs = engine.MissingLibraries(rc)
	if len(r.MissingLibs) == 0 {
		r.addRow("System Deps", StateOK, "Ready", "")
	} else {
		r.addRow("System Deps", StateBad,
			"Missing: "+strings.Join(r.MissingLibs, ", "), "Install System Libs")
	}

	rec, err := config.Load(rc)
	switch {
	case err == nil && datafiles.Validate(rc, rec.DataFilesPath, s.MarkerFiles) == nil:
		r.DataStored, r.DataLinked = true, true
		r.addRow("Morrowind Data", StateOK, "Linked", "")
	case err == nil:
		r.DataStored = true
		r.addRow("Morrowind Data", StateWarn, "Found (Not Linked)", "Run Setup")
	default:
		r.addRow("Morrowind Data", StateBad, "Missing", "Point at your Data Files folder")
	}

	if tailscale.Installed() {
		if tailscale.Running(rc) {
			r.addRow("Tailscale Network", StateOK, "Installed (Running)", "")
		} else {
			r.addRow("Tailscale Network", StateWarn, "Installed (Stopped)", "Start Service")
		}
	} else {
		r.addRow("Tailscale Network", StateBad, "Missing", "Install Tailscale")
	}

	port := doctor.InspectPort(rc, s.ServerPort)
	r.PortFree = port.Free
	portLabel := "UDP Port " + strconv.Itoa(s.ServerPort)
	switch {
	case port.Free:
		r.addRow(portLabel, StateOK, "Free", "Ready to Host")
	case port.Stale:
		r.addRow(portLabel, StateWarn, fmt.Sprintf("Held by stale PID %d", port.OwnerPID), "Run Doctor")
	default:
		r.addRow(portLabel, StateWarn, "In Use", "Server Running?")
	}

	return r
}

func (r *Report) addRow(component string, state State, status, action string) {
	r.Rows = append(r.Rows, Row{Component: component, State: state, Status: status, Action: action})
}

// Render draws the report as a bordered table.
func (r *Report) Render() string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			if col == 1 {
				return r.Rows[row].State.style().Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("Component", "Status", "Action Needed")

	for _, row := range r.Rows {
		t.Row(row.Component, row.State.icon()+" "+row.Status, row.Action)
	}

	return styleTitle.Render("System Status Check") + "\n" + t.Render()
}

// RunInteractive loops gather-render-fix until the system is healthy or
// the user declines the remaining fixes. setup runs the client setup flow
// when the engine or data linkage needs it.
func RunInteractive(rc *easy_io.RuntimeContext, s *settings.Settings, setup func() error) error {
	logger := otelzap.Ctx(rc.Ctx)

	for {
		r := Gather(rc, s)
		fmt.Println(r.Render())
		fmt.Println()

		if len(r.MissingLibs) > 0 {
			if fixed, err := offerLibraryInstall(rc, r.MissingLibs); err != nil {
				return err
			} else if fixed {
				continue
			}
		}

		// Nothing else works without flatpak, so this one is a hard stop.
		if !r.HasFlatpak {
			return easy_err.NewUserError(flatpak.InstallHint)
		}

		if !r.HasEngine && setup != nil {
			if interaction.PromptYesNo("TES3MP Engine is missing. Install it now?", true) {
				if err := setup(); err != nil {
					return err
				}
				continue
			}
			logger.Warn("Engine missing, play is not possible until it is installed")
		}

		if !r.DataLinked && r.DataStored && setup != nil {
			if interaction.PromptYesNo("Data files found but not linked. Link them now?", true) {
				if err := setup(); err != nil {
					return err
				}
				continue
			}
		}

		if !r.Healthy() {
			interaction.PressEnterToContinue()
		}
		return nil
	}
}

// offerLibraryInstall proposes the detected package manager command and
// runs it on consent. Returns true when a re-check is warranted.
func offerLibraryInstall(rc *easy_io.RuntimeContext, missing []string) (bool, error) {
	logger := otelzap.Ctx(rc.Ctx)

	hint := engine.InstallHint(missing)
	fmt.Println(styleError.Render("Missing system libraries: " + strings.Join(missing, ", ")))
	fmt.Println("Suggested fix: " + hint)

	parts := strings.Fields(hint)
	if len(parts) == 0 || parts[0] != "sudo" {
		// No recognized package manager, only manual instructions remain.
		return false, nil
	}

	if !interaction.PromptYesNo("Install missing libraries now?", true) {
		if interaction.PromptYesNo("Continue anyway?", false) {
			return false, nil
		}
		return false, easy_err.NewUserError("missing system libraries, install them and rerun: %s", hint)
	}

	if _, err := execute.Run(rc.Ctx, execute.Options{
		Command: parts[0],
		Args:    parts[1:],
	}); err != nil {
		logger.Warn("Library installation failed, install manually", zap.Error(err))
		return false, nil
	}

	logger.Info("Libraries installed, re-checking")
	return true, nil
}
