// pkg/doctor/doctor.go

// Package doctor runs the connection-diagnostics battery: reachability,
// tunnel health, and port occupancy. Every probe is independent and
// idempotent; one probe failing never stops the others, and the batch
// always yields exactly one result per probe.
package doctor

import (
	"context"
	"errors"
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Status classifies a probe outcome.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped"
	StatusUnknown Status = "unknown"
)

// errSkipped marks a probe that does not apply to this target.
var errSkipped = errors.New("probe skipped")

// Skip wraps a reason into the skip sentinel.
func Skip(reason string) error {
	return &skipError{reason: reason}
}

type skipError struct{ reason string }

func (e *skipError) Error() string { return e.reason }
func (e *skipError) Unwrap() error { return errSkipped }

// Check is a single diagnostic probe.
type Check struct {
	Name        string
	Description string
	Run         func(ctx context.Context) (detail string, err error)
	Required    bool
}

// Result is the transient outcome of one probe; results are produced
// fresh each run and never persisted except in the optional report log.
type Result struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

// checkTimeout bounds each probe so a hung external call cannot wedge
// the batch.
const checkTimeout = 10 * time.Second

// RunChecks executes every check and returns one Result per Check,
// regardless of individual failures.
func RunChecks(rc *easy_io.RuntimeContext, checks []Check) []Result {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Debug("Running diagnostic checks", zap.Int("total_checks", len(checks)))

	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		checkCtx, cancel := context.WithTimeout(rc.Ctx, checkTimeout)
		detail, err := runOne(checkCtx, check)
		cancel()

		result := Result{Name: check.Name, Detail: detail}
		switch {
		case err == nil:
			result.Status = StatusPass
			logger.Debug("Check passed", zap.String("check", check.Name))
		case errors.Is(err, errSkipped):
			result.Status = StatusSkipped
			if result.Detail == "" {
				result.Detail = err.Error()
			}
			logger.Debug("Check skipped",
				zap.String("check", check.Name),
				zap.String("reason", err.Error()))
		default:
			result.Status = StatusFail
			if result.Detail == "" {
				result.Detail = err.Error()
			}
			logger.Warn("Check failed",
				zap.String("check", check.Name),
				zap.Bool("required", check.Required),
				zap.Error(err))
		}

		results = append(results, result)
	}
	return results
}

// runOne contains a single probe, converting panics into failures so one
// bad probe cannot take the batch down.
func runOne(ctx context.Context, check Check) (detail string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = cerr.AssertionFailedf("check %s panicked: %v", check.Name, r)
		}
	}()
	return check.Run(ctx)
}
