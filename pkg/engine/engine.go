// pkg/engine/engine.go

// Package engine manages the locally installed TES3MP client build: the
// pinned release tarball under ~/.local/share/tes3mp, its bundled
// libraries, and the system libraries it links against.
package engine

import (
	"os"
	"path/filepath"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/settings"
	"github.com/tes3mp-community/tes3mp-easy/pkg/xdg"
	cerr "github.com/cockroachdb/errors"
	goversion "github.com/hashicorp/go-version"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Executables that ship in the release tarball. tes3mp.x86_64 is the real
// binary; browser and server are launcher scripts.
var binaries = []string{"tes3mp-browser", "tes3mp-server", "tes3mp", "tes3mp.x86_64"}

const versionFile = ".tes3mp-easy-version"

// InstallDir is where the engine tarball gets unpacked.
func InstallDir() string {
	base := xdg.GetEnvOrDefault("XDG_DATA_HOME", filepath.Join(os.Getenv("HOME"), ".local", "share"))
	return filepath.Join(base, "tes3mp")
}

// Installed reports whether a usable engine build is present.
func Installed() bool {
	_, err := os.Stat(filepath.Join(InstallDir(), "tes3mp-browser"))
	return err == nil
}

// BinaryPath locates the actual engine binary, preferring the versioned name.
func BinaryPath() (string, bool) {
	for _, name := range []string{"tes3mp.x86_64", "tes3mp"} {
		p := filepath.Join(InstallDir(), name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// InstalledVersion reads the version recorded at install time.
// Empty when the build predates this tool or was installed by hand.
func InstalledVersion() string {
	data, err := os.ReadFile(filepath.Join(InstallDir(), versionFile))
	if err != nil {
		return ""
	}
	return string(data)
}

// NeedsInstall decides whether the pinned release has to be fetched.
// A hand-installed build of unknown version is left alone; an older
// recorded version is upgraded, a newer one never downgraded.
func NeedsInstall(rc *easy_io.RuntimeContext, s *settings.Settings) bool {
	logger := otelzap.Ctx(rc.Ctx)

	if !Installed() {
		return true
	}

	current := InstalledVersion()
	if current == "" {
		logger.Debug("Engine present with unknown version, keeping it")
		return false
	}

	have, err := goversion.NewVersion(current)
	if err != nil {
		return false
	}
	want, err := goversion.NewVersion(s.EngineVersion)
	if err != nil {
		return false
	}

	if have.LessThan(want) {
		logger.Info("Engine is older than the pinned release",
			zap.String("installed", have.String()),
			zap.String("pinned", want.String()))
		return true
	}
	return false
}

// Install downloads and unpacks the pinned release.
func Install(rc *easy_io.RuntimeContext, s *settings.Settings) error {
	logger := otelzap.Ctx(rc.Ctx)
	dir := InstallDir()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cerr.Wrapf(err, "failed to create %s", dir)
	}

	logger.Info("Downloading TES3MP engine",
		zap.String("version", s.EngineVersion),
		zap.String("url", s.ClientURL))

	if err := downloadAndExtract(rc, s.ClientURL, dir); err != nil {
		return cerr.Wrap(err, "engine installation failed")
	}

	if err := markExecutables(dir); err != nil {
		return cerr.Wrap(err, "failed to set engine binaries executable")
	}

	if err := os.WriteFile(filepath.Join(dir, versionFile), []byte(s.EngineVersion), 0o644); err != nil {
		logger.Warn("Could not record engine version", zap.Error(err))
	}

	logger.Info("Engine installed", zap.String("dir", dir))
	return nil
}

func markExecutables(dir string) error {
	for _, name := range binaries {
		p := filepath.Join(dir, name)
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
