// pkg/doctor/doctor_test.go

package doctor

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) *easy_io.RuntimeContext {
	t.Helper()
	return easy_io.NewContext(context.Background(), "test")
}

// One result per check, no matter what the individual checks do.
func TestRunChecksNeverAborts(t *testing.T) {
	rc := testContext(t)

	checks := []Check{
		{
			Name: "passes",
			Run:  func(ctx context.Context) (string, error) { return "fine", nil },
		},
		{
			Name: "fails",
			Run:  func(ctx context.Context) (string, error) { return "", errors.New("broken") },
		},
		{
			Name: "skips",
			Run:  func(ctx context.Context) (string, error) { return "", Skip("not applicable here") },
		},
		{
			Name: "passes after failure",
			Run:  func(ctx context.Context) (string, error) { return "still ran", nil },
		},
	}

	results := RunChecks(rc, checks)
	require.Len(t, results, len(checks))

	assert.Equal(t, StatusPass, results[0].Status)
	assert.Equal(t, "fine", results[0].Detail)
	assert.Equal(t, StatusFail, results[1].Status)
	assert.Equal(t, StatusSkipped, results[2].Status)
	assert.Equal(t, StatusPass, results[3].Status)
}

func TestRunChecksPanicBecomesFailure(t *testing.T) {
	rc := testContext(t)

	results := RunChecks(rc, []Check{
		{
			Name: "panics",
			Run:  func(ctx context.Context) (string, error) { panic("boom") },
		},
		{
			Name: "still runs",
			Run:  func(ctx context.Context) (string, error) { return "", nil },
		},
	})

	require.Len(t, results, 2)
	assert.Equal(t, StatusFail, results[0].Status)
	assert.Equal(t, StatusPass, results[1].Status)
}

// Each check runs under its own deadline so a hung external call cannot
// wedge the batch.
func TestRunChecksAppliesDeadline(t *testing.T) {
	rc := testContext(t)

	results := RunChecks(rc, []Check{
		{
			Name: "sees a deadline",
			Run: func(ctx context.Context) (string, error) {
				if _, ok := ctx.Deadline(); !ok {
					return "", errors.New("no deadline on check context")
				}
				return "bounded", nil
			},
		},
	})

	require.Len(t, results, 1)
	assert.Equal(t, StatusPass, results[0].Status)
}

func TestConnectionChecksBatteryShape(t *testing.T) {
	rc := testContext(t)

	checks := ConnectionChecks(rc, "100.101.50.5", 25565, 5)
	require.Len(t, checks, 4)
	for _, c := range checks {
		assert.NotEmpty(t, c.Name)
		assert.NotNil(t, c.Run)
	}
}

func TestInspectPortFree(t *testing.T) {
	rc := testContext(t)

	// Grab an ephemeral port, close it, and probe it while free.
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	require.NoError(t, err)
	port := conn.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, conn.Close())

	report := InspectPort(rc, port)
	assert.True(t, report.Free)
	assert.Zero(t, report.OwnerPID)
}

func TestInspectPortBound(t *testing.T) {
	rc := testContext(t)

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	require.NoError(t, err)
	defer conn.Close()
	port := conn.LocalAddr().(*net.UDPAddr).Port

	report := InspectPort(rc, port)
	assert.False(t, report.Free)
}

func TestSkipErrorUnwraps(t *testing.T) {
	err := Skip("lan target")
	assert.ErrorIs(t, err, errSkipped)
	assert.Equal(t, "lan target", err.Error())
}
