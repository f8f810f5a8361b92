// pkg/healthcheck/healthcheck_test.go

package healthcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sixRowReport mirrors the shape Gather produces on a fully ready system.
func sixRowReport() *Report {
	r := &Report{
		HasFlatpak: true,
		HasEngine:  true,
		DataLinked: true,
		DataStored: true,
		PortFree:   true,
	}
	r.addRow("Flatpak System", StateOK, "Installed", "")
	r.addRow("TES3MP Engine", StateOK, "Installed", "")
	r.addRow("System Deps", StateOK, "Ready", "")
	r.addRow("Morrowind Data", StateOK, "Linked", "")
	r.addRow("Tailscale Network", StateOK, "Installed (Running)", "")
	r.addRow("UDP Port 25565", StateOK, "Free", "Ready to Host")
	return r
}

func TestReportHealthy(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Report)
		want   bool
	}{
		{"everything ready", func(r *Report) {}, true},
		{"flatpak missing", func(r *Report) { r.HasFlatpak = false }, false},
		{"engine missing", func(r *Report) { r.HasEngine = false }, false},
		{"libraries missing", func(r *Report) { r.MissingLibs = []string{"libpng16.so.16"} }, false},
		{"data not linked", func(r *Report) { r.DataLinked = false }, false},
		// A busy port degrades hosting, not play.
		{"port in use still playable", func(r *Report) { r.PortFree = false }, true},
		// Tailscale is optional; its row never gates Healthy.
		{"no tailscale still playable", func(r *Report) {
			r.Rows[4] = Row{Component: "Tailscale Network", State: StateBad, Status: "Missing", Action: "Install Tailscale"}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sixRowReport()
			tt.mutate(r)
			assert.Equal(t, tt.want, r.Healthy())
		})
	}
}

func TestReportRenderListsEveryComponent(t *testing.T) {
	r := sixRowReport()
	require.Len(t, r.Rows, 6)

	out := r.Render()
	assert.Contains(t, out, "System Status Check")
	assert.Contains(t, out, "Component")
	assert.Contains(t, out, "Action Needed")
	for _, row := range r.Rows {
		assert.Contains(t, out, row.Component)
	}
}

func TestStateIcons(t *testing.T) {
	assert.NotEqual(t, StateOK.icon(), StateBad.icon())
	assert.NotEqual(t, StateWarn.icon(), StateBad.icon())
}
