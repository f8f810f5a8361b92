// pkg/doctor/report_test.go

package doctor

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"

	"github.com/tes3mp-community/tes3mp-easy/pkg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportAppendIsOnePerLine(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	rc := testContext(t)

	results := []Result{
		{Name: CheckReachability, Status: StatusPass, Detail: "reply in 12 ms"},
		{Name: CheckTunnelPing, Status: StatusFail, Detail: "tunnel broken"},
	}

	first := NewReport("100.101.50.5", results)
	second := NewReport("100.101.50.6", results)
	require.NoError(t, first.Append(rc))
	require.NoError(t, second.Append(rc))

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	f, err := os.Open(xdg.StatePath(reportFile))
	require.NoError(t, err)
	defer f.Close()

	var lines []Report
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r Report
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		lines = append(lines, r)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, lines, 2)
	assert.Equal(t, "100.101.50.5", lines[0].Target)
	assert.Len(t, lines[0].Results, 2)
	assert.NotEmpty(t, lines[0].Verdict)
}
