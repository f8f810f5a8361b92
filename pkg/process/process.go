// pkg/process/process.go

// Package process finds and terminates processes by exact binary name.
// Matching is pgrep -x plus a /proc exe verification, so "tes3mp-server"
// never matches an unrelated command line that merely mentions it.
package process

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// FindExact returns the PIDs whose binary name matches processName
// exactly. No matches is a normal result, not an error.
func FindExact(rc *easy_io.RuntimeContext, processName string) ([]int, error) {
	logger := otelzap.Ctx(rc.Ctx)

	output, err := execute.Run(rc.Ctx, execute.Options{
		Command: "pgrep",
		Args:    []string{"-x", processName},
		Capture: true,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		// pgrep exits 1 when nothing matched.
		if execute.ExitCode(err) == 1 {
			return nil, nil
		}
		return nil, cerr.Wrap(err, "failed to check for running processes")
	}

	var pids []int
	for _, pidStr := range strings.Split(strings.TrimSpace(output), "\n") {
		pidStr = strings.TrimSpace(pidStr)
		if pidStr == "" {
			continue
		}
		pid, err := strconv.Atoi(pidStr)
		if err != nil {
			continue
		}

		// Verify against /proc so pgrep false positives are dropped.
		target, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
		if err != nil {
			// Process exited, or a kernel thread we cannot inspect.
			logger.Debug("Cannot read process exe link",
				zap.Int("pid", pid),
				zap.Error(err))
			continue
		}
		if filepath.Base(target) != processName {
			logger.Debug("PID binary name mismatch",
				zap.Int("pid", pid),
				zap.String("expected", processName),
				zap.String("actual", filepath.Base(target)))
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

// IsRunning reports whether any process with that exact name exists.
func IsRunning(rc *easy_io.RuntimeContext, processName string) bool {
	pids, err := FindExact(rc, processName)
	return err == nil && len(pids) > 0
}

// Terminate sends SIGTERM and escalates to SIGKILL if the process is
// still alive after a grace period.
func Terminate(rc *easy_io.RuntimeContext, pid int) error {
	logger := otelzap.Ctx(rc.Ctx)

	proc, err := os.FindProcess(pid)
	if err != nil {
		return cerr.Wrapf(err, "no such process %d", pid)
	}

	logger.Info("Sending SIGTERM", zap.Int("pid", pid))
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return cerr.Wrapf(err, "failed to signal process %d", pid)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if !alive(pid) {
			logger.Info("Process terminated", zap.Int("pid", pid))
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}

	logger.Warn("Process ignored SIGTERM, escalating to SIGKILL", zap.Int("pid", pid))
	_ = proc.Signal(syscall.SIGKILL)
	time.Sleep(500 * time.Millisecond)

	if alive(pid) {
		return cerr.Newf("process %d did not exit", pid)
	}
	return nil
}

func alive(pid int) bool {
	_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	return err == nil
}
