// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Options controls a single external command invocation.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Env     []string // appended to the inherited environment
	Capture bool     // return stdout+stderr instead of streaming it
	Stdin   string   // fed to the command's stdin when non-empty
	Timeout time.Duration
	Retries int
	Delay   time.Duration
	Logger  *zap.Logger
}

// DefaultTimeout bounds external calls so a hung flatpak or tailscale
// invocation cannot wedge the interactive loop.
const DefaultTimeout = 3 * time.Minute

// Run executes a command with structured logging and proper error handling.
// Shell execution is not supported; pass arguments explicitly.
func Run(ctx context.Context, opts Options) (string, error) {
	cmdStr := buildCommandString(opts.Command, opts.Args...)

	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	runCtx, span := telemetry.Start(runCtx, "execute.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
	)

	logger.Debug("Starting execution", zap.String("command", cmdStr))

	var output string
	var err error

	for i := 1; i <= max(1, opts.Retries); i++ {
		cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
		if opts.Dir != "" {
			cmd.Dir = opts.Dir
		}
		if len(opts.Env) > 0 {
			cmd.Env = append(os.Environ(), opts.Env...)
		}

		var buf bytes.Buffer
		if opts.Capture {
			cmd.Stdout = &buf
			cmd.Stderr = &buf
		} else {
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			cmd.Stdin = os.Stdin
		}
		if opts.Stdin != "" {
			cmd.Stdin = strings.NewReader(opts.Stdin)
		}

		err = cmd.Run()
		output = buf.String()

		if err == nil {
			logger.Debug("Execution succeeded", zap.String("command", cmdStr))
			break
		}

		summary := easy_err.ExtractSummary(output, 2)
		span.RecordError(err)
		logger.Debug("Execution failed",
			zap.Int("attempt", i),
			zap.String("command", cmdStr),
			zap.String("summary", summary),
			zap.Error(err),
		)

		if i < opts.Retries {
			time.Sleep(opts.Delay)
		}
	}

	if err != nil {
		return output, cerr.Wrapf(err, "%s failed", cmdStr)
	}
	return output, nil
}

// CommandExists reports whether a binary resolves on PATH. Absence is an
// expected condition here, never an error.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ExitCode digs the process exit code out of a Run error, -1 if none.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if cerr.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func buildCommandString(command string, args ...string) string {
	if len(args) == 0 {
		return command
	}
	return fmt.Sprintf("%s %s", command, strings.Join(args, " "))
}

func defaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}
