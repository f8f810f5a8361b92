// pkg/datafiles/validate.go

// Package datafiles validates the Morrowind "Data Files" directory and,
// on success, remembers it and links it into the engine's openmw.cfg.
//
// A directory counts as valid when it directly contains a marker file:
// Morrowind.esm by default, with any other *.esm accepted so total
// conversions work too.
package datafiles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/config"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Reason classifies why a path was rejected.
type Reason string

const (
	// ReasonParentFolder: the user gave the folder above the real data
	// directory, e.g. ~/Morrowind instead of ~/Morrowind/Data Files.
	ReasonParentFolder Reason = "parent folder"

	// ReasonMissingMarker: nothing in the path or one level below looks
	// like game data.
	ReasonMissingMarker Reason = "missing marker"
)

// RejectionError is an expected validation failure; the caller re-prompts.
type RejectionError struct {
	Reason Reason
	Path   string
	Child  string // populated for ReasonParentFolder
}

func (e *RejectionError) Error() string {
	switch e.Reason {
	case ReasonParentFolder:
		return fmt.Sprintf("%s looks like the folder above your game data. Try %s instead", e.Path, e.Child)
	case ReasonMissingMarker:
		return fmt.Sprintf("could not find Morrowind.esm (or any .esm file) in %s", e.Path)
	default:
		return fmt.Sprintf("%s was rejected", e.Path)
	}
}

// IsRejected reports whether err is a validation rejection.
func IsRejected(err error) bool {
	var r *RejectionError
	return cerr.As(err, &r)
}

// DefaultMarkers is the marker-file set used when the caller supplies
// none; settings.yaml's marker_files overrides it.
var DefaultMarkers = []string{"Morrowind.esm", "Tribunal.esm", "Bloodmoon.esm"}

// Validate checks that path is a usable data-files directory. A nil or
// empty marker list falls back to DefaultMarkers.
func Validate(rc *easy_io.RuntimeContext, path string, markers []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	abs, err := expand(path)
	if err != nil {
		return cerr.Wrapf(err, "cannot resolve %s", path)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return &RejectionError{Reason: ReasonMissingMarker, Path: abs}
	}

	if len(markers) == 0 {
		markers = DefaultMarkers
	}

	if hasMarker(abs, markers) {
		logger.Debug("Data files validated", zap.String("path", abs))
		return nil
	}

	// The classic mistake is pointing at the install root. Look one level
	// down before giving up so the error can name the right folder.
	entries, err := os.ReadDir(abs)
	if err != nil {
		return cerr.Wrapf(err, "cannot read %s", abs)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		child := filepath.Join(abs, entry.Name())
		if hasMarker(child, markers) {
			logger.Debug("Marker found one level down",
				zap.String("given", abs),
				zap.String("child", child))
			return &RejectionError{Reason: ReasonParentFolder, Path: abs, Child: child}
		}
	}

	return &RejectionError{Reason: ReasonMissingMarker, Path: abs}
}

// ValidateAndRemember validates path and, on success, persists it and
// rewrites the openmw configs to point at it.
func ValidateAndRemember(rc *easy_io.RuntimeContext, path string, markers []string) error {
	if err := Validate(rc, path, markers); err != nil {
		return err
	}

	abs, err := expand(path)
	if err != nil {
		return cerr.Wrapf(err, "cannot resolve %s", path)
	}

	rec := &config.Record{DataFilesPath: abs, LastChecked: time.Now()}
	if err := config.Save(rc, rec); err != nil {
		return err
	}

	return LinkOpenMWConfigs(rc, abs)
}

func hasMarker(dir string, markers []string) bool {
	for _, marker := range markers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}

	// Any .esm keeps total-conversion installs working.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".esm") {
			return true
		}
	}
	return false
}

func expand(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
