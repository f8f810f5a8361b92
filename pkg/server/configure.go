// pkg/server/configure.go

package server

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ConfigFile is the stock config shipped in the release tarball.
const ConfigFile = "tes3mp-server-default.cfg"

var (
	hostnameRe = regexp.MustCompile(`(?m)^hostname\s*=.*$`)
	passwordRe = regexp.MustCompile(`(?m)^password\s*=.*$`)
)

// CurrentHostname reads the configured server name, falling back to the
// stock default when the line is absent.
func CurrentHostname(root string) string {
	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if err != nil {
		return "TES3MP Server"
	}
	m := regexp.MustCompile(`(?m)^hostname\s*=\s*(.+)$`).FindSubmatch(data)
	if m == nil {
		return "TES3MP Server"
	}
	return strings.TrimSpace(string(m[1]))
}

// Configure rewrites hostname and password in the stock config. An empty
// password clears the line so the server runs open.
func Configure(rc *easy_io.RuntimeContext, root, hostname, password string) error {
	logger := otelzap.Ctx(rc.Ctx)
	cfgPath := filepath.Join(root, ConfigFile)

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return easy_err.NewUserError(
			"server config %s is missing, reinstall the server to restore it", cfgPath)
	}
	cfg := string(data)

	// Literal replacement so a $ in the name or password is not taken as
	// a capture-group reference.
	cfg = hostnameRe.ReplaceAllLiteralString(cfg, "hostname = "+hostname)
	cfg = passwordRe.ReplaceAllLiteralString(cfg, "password = "+password)

	if err := writeAtomic(cfgPath, []byte(cfg)); err != nil {
		return cerr.Wrapf(err, "failed to update %s", cfgPath)
	}

	logger.Info("Server configured",
		zap.String("hostname", hostname),
		zap.Bool("password_set", password != ""))
	return nil
}

// writeAtomic replaces path via a same-directory temp file so a crash
// mid-write never leaves a truncated config.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
