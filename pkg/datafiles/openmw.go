// pkg/datafiles/openmw.go

package datafiles

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/engine"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	dataLineRe = regexp.MustCompile(`^data\s*=`)
	// Base game content and archives are re-added by us; stale duplicates
	// trigger the engine's "content file specified more than once" error.
	baseContentRe = regexp.MustCompile(`(?i)^content\s*=\s*(Morrowind|Tribunal|Bloodmoon)\.esm`)
	baseArchiveRe = regexp.MustCompile(`(?i)^fallback-archive\s*=\s*(Morrowind|Tribunal|Bloodmoon)\.bsa`)
)

// LinkOpenMWConfigs points both openmw.cfg files at dataPath. The global
// config carries the content and archive master list; the engine-local
// one inherits it, so content lines are stripped there.
func LinkOpenMWConfigs(rc *easy_io.RuntimeContext, dataPath string) error {
	logger := otelzap.Ctx(rc.Ctx)

	globalCfg := filepath.Join(os.Getenv("HOME"), ".config", "openmw", "openmw.cfg")
	localCfg := filepath.Join(engine.InstallDir(), "openmw.cfg")

	if err := updateSingleConfig(globalCfg, dataPath, true); err != nil {
		return cerr.Wrapf(err, "failed to update %s", globalCfg)
	}
	if err := updateSingleConfig(localCfg, dataPath, false); err != nil {
		return cerr.Wrapf(err, "failed to update %s", localCfg)
	}

	logger.Info("openmw configs linked", zap.String("data_path", dataPath))
	return nil
}

func updateSingleConfig(cfgPath, dataPath string, includeContent bool) error {
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return err
	}

	var kept []string
	if data, err := os.ReadFile(cfgPath); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			trimmed := strings.TrimSpace(line)
			if dataLineRe.MatchString(trimmed) ||
				baseContentRe.MatchString(trimmed) ||
				baseArchiveRe.MatchString(trimmed) {
				continue
			}
			kept = append(kept, line)
		}
	}

	header := []string{fmt.Sprintf("data=%q", dataPath)}
	if includeContent {
		header = append(header,
			"content=Morrowind.esm",
			"content=Tribunal.esm",
			"content=Bloodmoon.esm",
			"fallback-archive=Morrowind.bsa",
			"fallback-archive=Tribunal.bsa",
			"fallback-archive=Bloodmoon.bsa",
		)
	}

	out := strings.Join(append(header, kept...), "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}

	// Same atomic-replace discipline as the config store: a crash must
	// not leave a half-written openmw.cfg behind.
	tmp, err := os.CreateTemp(filepath.Dir(cfgPath), filepath.Base(cfgPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(out); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, cfgPath)
}
