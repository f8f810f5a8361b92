// pkg/xdg/xdg.go

package xdg

import (
	"os"
	"path/filepath"
)

const (
	// DirPermStandard is used for every per-user directory we create.
	DirPermStandard = 0o700

	// App is the directory name under each XDG base dir.
	App = "tes3mp-easy"
)

func GetEnvOrDefault(envVar, fallback string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return fallback
}

func ConfigPath(file string) string {
	base := GetEnvOrDefault("XDG_CONFIG_HOME", filepath.Join(os.Getenv("HOME"), ".config"))
	return filepath.Join(base, App, file)
}

func CachePath(file string) string {
	base := GetEnvOrDefault("XDG_CACHE_HOME", filepath.Join(os.Getenv("HOME"), ".cache"))
	return filepath.Join(base, App, file)
}

func StatePath(file string) string {
	base := GetEnvOrDefault("XDG_STATE_HOME", filepath.Join(os.Getenv("HOME"), ".local", "state"))
	return filepath.Join(base, App, file)
}

// EnsureDir creates the parent directory of path on demand.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), DirPermStandard)
}
