// pkg/doctor/report.go

package doctor

import (
	"encoding/json"
	"os"
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/xdg"
	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Report is one saved doctor run, appended to doctor.jsonl so users can
// share a history when asking for help.
type Report struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Target  string    `json:"target"`
	Results []Result  `json:"results"`
	Verdict string    `json:"verdict"`
}

const reportFile = "doctor.jsonl"

// NewReport assembles a report with a fresh run ID.
func NewReport(target string, results []Result) *Report {
	return &Report{
		ID:      uuid.NewString(),
		Time:    time.Now(),
		Target:  target,
		Results: results,
		Verdict: Verdict(results, target),
	}
}

// Append writes the report as one JSON line in the user state dir.
// Failing to persist a report never fails the diagnostic itself.
func (r *Report) Append(rc *easy_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)
	path := xdg.StatePath(reportFile)

	if err := xdg.EnsureDir(path); err != nil {
		return cerr.Wrap(err, "failed to create report dir")
	}

	line, err := json.Marshal(r)
	if err != nil {
		return cerr.Wrap(err, "failed to encode report")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return cerr.Wrap(err, "failed to open report log")
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return cerr.Wrap(err, "failed to write report")
	}

	logger.Debug("Doctor report saved",
		zap.String("id", r.ID),
		zap.String("path", path))
	return nil
}
