// pkg/server/server.go

// Package server manages a dedicated TES3MP server install: download,
// hostname/password configuration, systemd unit, and foreground runs.
package server

import (
	"os"
	"path/filepath"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/engine"
	"github.com/tes3mp-community/tes3mp-easy/pkg/settings"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ServerBinaries are checked in order when locating the executable.
// tes3mp-server is a launcher script wrapping the versioned binary.
var ServerBinaries = []string{"tes3mp-server.x86_64", "tes3mp-server"}

// rootPatterns match the release tarball's top-level directory across the
// capitalizations TES3MP has shipped under.
var rootPatterns = []string{"TES3MP-Server*", "TES3MP-server*", "tes3mp-server*"}

// Root locates the unpacked server directory inside s.ServerDir.
// Returns "" when no install is present.
func Root(s *settings.Settings) string {
	if _, err := os.Stat(s.ServerDir); err != nil {
		return ""
	}
	for _, pattern := range rootPatterns {
		matches, err := filepath.Glob(filepath.Join(s.ServerDir, pattern))
		if err != nil || len(matches) == 0 {
			continue
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.IsDir() {
				return m
			}
		}
	}
	return ""
}

// Installed reports whether a server build is present.
func Installed(s *settings.Settings) bool {
	return Root(s) != ""
}

// BinaryPath finds the server executable under root.
func BinaryPath(root string) (string, bool) {
	for _, name := range ServerBinaries {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// Install downloads and unpacks the pinned server release, then reports
// any system libraries the binary still cannot resolve. Returns the
// discovered server root.
func Install(rc *easy_io.RuntimeContext, s *settings.Settings) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)

	if root := Root(s); root != "" {
		logger.Info("Server already installed", zap.String("root", root))
		return root, nil
	}

	if err := os.MkdirAll(s.ServerDir, 0o755); err != nil {
		return "", cerr.Wrapf(err, "failed to create %s", s.ServerDir)
	}

	logger.Info("Downloading TES3MP server",
		zap.String("version", s.EngineVersion),
		zap.String("url", s.ServerURL))

	if err := engine.DownloadRelease(rc, s.ServerURL, s.ServerDir); err != nil {
		return "", cerr.Wrap(err, "server installation failed")
	}

	root := Root(s)
	if root == "" {
		return "", easy_err.NewUserError(
			"the server tarball unpacked but no TES3MP-Server directory appeared under %s", s.ServerDir)
	}

	if err := markExecutables(root); err != nil {
		return "", cerr.Wrap(err, "failed to set server binaries executable")
	}

	if missing := engine.MissingLibrariesAt(rc, root, ServerBinaries); len(missing) > 0 {
		logger.Warn("Server binary is missing system libraries",
			zap.Strings("missing", missing),
			zap.String("hint", engine.InstallHint(missing)))
	}

	logger.Info("Server installed", zap.String("root", root))
	return root, nil
}

func markExecutables(root string) error {
	for _, name := range ServerBinaries {
		p := filepath.Join(root, name)
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if err := os.Chmod(p, info.Mode()|0o111); err != nil {
			return err
		}
	}
	return nil
}
