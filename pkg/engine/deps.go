// pkg/engine/deps.go

package engine

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/execute"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// libPackages maps a missing soname prefix to the distro package that
// provides it. Collected from the libraries the 0.8.1 build actually
// links against.
var libPackages = map[string]struct{ apt, dnf, pacman string }{
	"libzvbi":                  {"libzvbi0", "zvbi", "zvbi"},
	"libsnappy":                {"libsnappy1v5", "snappy", "snappy"},
	"libgsm":                   {"libgsm1", "gsm", "gsm"},
	"libxml2":                  {"libxml2", "libxml2", "libxml2"},
	"libosg":                   {"libopenscenegraph-dev", "OpenSceneGraph", "openscenegraph"},
	"libOpenThreads":           {"libopenscenegraph-dev", "OpenSceneGraph", "openscenegraph"},
	"libboost_system":          {"libboost-system-dev", "boost-system", "boost-libs"},
	"libboost_filesystem":      {"libboost-filesystem-dev", "boost-filesystem", "boost-libs"},
	"libboost_program_options": {"libboost-program-options-dev", "boost-program-options", "boost-libs"},
	"libboost_iostreams":       {"libboost-iostreams-dev", "boost-iostreams", "boost-libs"},
	"libopenal":                {"libopenal1", "openal-soft", "openal"},
	"libavcodec":               {"libavcodec-dev", "ffmpeg-libs", "ffmpeg"},
	"libavformat":              {"libavformat-dev", "ffmpeg-libs", "ffmpeg"},
	"libavutil":                {"libavutil-dev", "ffmpeg-libs", "ffmpeg"},
	"libswscale":               {"libswscale-dev", "ffmpeg-libs", "ffmpeg"},
	"libswresample":            {"libswresample-dev", "ffmpeg-libs", "ffmpeg"},
	"libMyGUIEngine":           {"libmygui-dev", "mygui", "mygui"},
	"libBullet":                {"libbullet-dev", "bullet", "bullet"},
	"libLinearMath":            {"libbullet-dev", "bullet", "bullet"},
	"libluajit":                {"libluajit-5.1-2", "luajit", "luajit"},
}

// MissingLibraries runs ldd against the installed binary, with the
// bundled lib/ dir on LD_LIBRARY_PATH, and returns the sonames ldd
// could not resolve. An uninstalled engine yields an empty list.
func MissingLibraries(rc *easy_io.RuntimeContext) []string {
	return missingLibrariesFor(rc, InstallDir())
}

// MissingLibrariesAt works the same for an arbitrary install root, so the
// server manager can reuse it on tes3mp-server.x86_64.
func MissingLibrariesAt(rc *easy_io.RuntimeContext, root string, binaryNames []string) []string {
	logger := otelzap.Ctx(rc.Ctx)

	var bin string
	for _, name := range binaryNames {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			bin = p
			break
		}
	}
	if bin == "" {
		return nil
	}

	output, err := execute.Run(rc.Ctx, execute.Options{
		Command: "ldd",
		Args:    []string{bin},
		Env:     []string{"LD_LIBRARY_PATH=" + filepath.Join(root, "lib")},
		Capture: true,
		Timeout: 10 * time.Second,
	})
	if err != nil {
		logger.Debug("ldd failed, skipping library check", zap.Error(err))
		return nil
	}

	return parseLddOutput(output)
}

// parseLddOutput pulls the unresolved sonames out of ldd output.
func parseLddOutput(output string) []string {
	var missing []string
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "not found") {
			continue
		}
		// "	libzvbi.so.0 => not found"
		name := strings.TrimSpace(strings.SplitN(line, "=>", 2)[0])
		if name != "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func missingLibrariesFor(rc *easy_io.RuntimeContext, root string) []string {
	return MissingLibrariesAt(rc, root, []string{"tes3mp.x86_64", "tes3mp"})
}

// InstallHint renders a copy-pasteable install command for the detected
// package manager, or a manual list when none is recognized.
func InstallHint(missing []string) string {
	if len(missing) == 0 {
		return ""
	}

	type mgr struct {
		binary string
		prefix string
		pick   func(p struct{ apt, dnf, pacman string }) string
	}
	managers := []mgr{
		{"apt-get", "sudo apt-get install -y", func(p struct{ apt, dnf, pacman string }) string { return p.apt }},
		{"dnf", "sudo dnf install -y", func(p struct{ apt, dnf, pacman string }) string { return p.dnf }},
		{"pacman", "sudo pacman -S --noconfirm", func(p struct{ apt, dnf, pacman string }) string { return p.pacman }},
	}

	for _, m := range managers {
		if !execute.CommandExists(m.binary) {
			continue
		}
		seen := map[string]bool{}
		var pkgs []string
		for _, lib := range missing {
			for prefix, pkg := range libPackages {
				if strings.HasPrefix(lib, prefix) {
					name := m.pick(pkg)
					if !seen[name] {
						seen[name] = true
						pkgs = append(pkgs, name)
					}
					break
				}
			}
		}
		if len(pkgs) == 0 {
			break
		}
		sort.Strings(pkgs)
		return m.prefix + " " + strings.Join(pkgs, " ")
	}

	return "install these libraries with your package manager: " + strings.Join(missing, ", ")
}
