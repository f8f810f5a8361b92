// pkg/config/store.go

// Package config persists the one record tes3mp-easy remembers between
// runs: where the user's Morrowind data files live. The record is created
// on the first successful validation and overwritten on every
// re-validation, never deleted automatically.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/xdg"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is the expected first-run condition: no record exists yet.
// Recover by running setup, not by aborting.
var ErrNotFound = errors.New("no saved configuration found (run setup first)")

// Record is the persisted configuration.
type Record struct {
	DataFilesPath string    `yaml:"data_files_path" validate:"required,dir"`
	LastChecked   time.Time `yaml:"last_checked"`
}

const fileName = "config.yaml"

var validate = validator.New()

// Path returns the record's location under the per-user config dir.
func Path() string {
	return xdg.ConfigPath(fileName)
}

// Load reads the saved record. Returns ErrNotFound when none exists.
func Load(rc *easy_io.RuntimeContext) (*Record, error) {
	logger := otelzap.Ctx(rc.Ctx)
	path := Path()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No config record yet", zap.String("path", path))
			return nil, ErrNotFound
		}
		return nil, cerr.Wrapf(err, "failed to read config at %s", path)
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, cerr.Wrapf(err, "config at %s is not valid YAML", path)
	}

	if err := validate.Struct(&rec); err != nil {
		// A stale record pointing at a removed directory is treated the
		// same as no record: setup re-creates it.
		logger.Warn("Saved config no longer valid, treating as first run",
			zap.String("path", path),
			zap.Error(err))
		return nil, ErrNotFound
	}

	logger.Debug("Config record loaded",
		zap.String("data_files_path", rec.DataFilesPath),
		zap.Time("last_checked", rec.LastChecked))
	return &rec, nil
}

// Save writes the record with atomic-replace semantics: the full content
// lands in a temp file first and is renamed into place, so the record is
// never left partially written.
func Save(rc *easy_io.RuntimeContext, rec *Record) error {
	logger := otelzap.Ctx(rc.Ctx)
	path := Path()

	if rec.LastChecked.IsZero() {
		rec.LastChecked = time.Now()
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return cerr.Wrap(err, "failed to marshal config")
	}

	if err := xdg.EnsureDir(path); err != nil {
		return cerr.Wrapf(err, "failed to create config dir for %s", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), fileName+".tmp-*")
	if err != nil {
		return cerr.Wrap(err, "failed to create temp config file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return cerr.Wrap(err, "failed to write temp config file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return cerr.Wrap(err, "failed to sync temp config file")
	}
	if err := tmp.Close(); err != nil {
		return cerr.Wrap(err, "failed to close temp config file")
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return cerr.Wrap(err, "failed to set config permissions")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return cerr.Wrapf(err, "failed to replace config at %s", path)
	}

	logger.Info("Config record saved",
		zap.String("path", path),
		zap.String("data_files_path", rec.DataFilesPath))
	return nil
}
