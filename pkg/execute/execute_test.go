// pkg/execute/execute_test.go

package execute

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCaptures(t *testing.T) {
	out, err := Run(context.Background(), Options{
		Command: "echo",
		Args:    []string{"hello"},
		Capture: true,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", strings.TrimSpace(out))
}

// A deadline on the caller's context must bound the command even when
// Options.Timeout is longer.
func TestRunHonorsCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := Run(ctx, Options{
		Command: "sleep",
		Args:    []string{"30"},
		Capture: true,
		Timeout: time.Minute,
	})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExitCode(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Command: "false",
		Capture: true,
		Timeout: 5 * time.Second,
	})
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))

	assert.Equal(t, -1, ExitCode(nil))
}

func TestCommandExists(t *testing.T) {
	assert.True(t, CommandExists("sh"))
	assert.False(t, CommandExists("no-such-binary-here"))
}
