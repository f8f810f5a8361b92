// pkg/settings/settings.go

// Package settings owns tool-level tunables: the well-known server port,
// pinned release URLs, and the marker-file set. Values come from defaults,
// an optional settings.yaml in the user config dir, and TES3MP_EASY_*
// environment variables, in ascending priority.
package settings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tes3mp-community/tes3mp-easy/pkg/xdg"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	// ServerPort is the engine's well-known UDP port.
	ServerPort = 25565

	// EngineVersion is the pinned TES3MP release.
	EngineVersion = "0.8.1"

	// FlatpakAppID identifies the engine on Flathub.
	FlatpakAppID = "org.tes3mp.TES3MP"
)

type Settings struct {
	ServerPort     int      `mapstructure:"server_port"`
	FlatpakAppID   string   `mapstructure:"flatpak_app_id"`
	EngineVersion  string   `mapstructure:"engine_version"`
	ClientURL      string   `mapstructure:"client_url"`
	ServerURL      string   `mapstructure:"server_url"`
	ServerDir      string   `mapstructure:"server_dir"`
	MarkerFiles    []string `mapstructure:"marker_files"`
	PingTimeoutSec int      `mapstructure:"ping_timeout_sec"`
}

// Load reads settings.yaml if present and applies env overrides.
// A missing file is the normal case and not an error.
func Load() *Settings {
	v := viper.New()
	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Dir(xdg.ConfigPath("settings.yaml")))
	v.SetEnvPrefix("TES3MP_EASY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_port", ServerPort)
	v.SetDefault("flatpak_app_id", FlatpakAppID)
	v.SetDefault("engine_version", EngineVersion)
	v.SetDefault("client_url",
		"https://github.com/TES3MP/TES3MP/releases/download/tes3mp-0.8.1/tes3mp-GNU+Linux-x86_64-release-0.8.1-68954091c5-6da3fdea59.tar.gz")
	v.SetDefault("server_url",
		"https://github.com/TES3MP/TES3MP/releases/download/tes3mp-0.8.1/tes3mp-server-GNU+Linux-x86_64-release-0.8.1-68954091c5-6da3fdea59.tar.gz")
	v.SetDefault("server_dir", filepath.Join(os.Getenv("HOME"), "Games", "TES3MP_Server"))
	v.SetDefault("marker_files", []string{"Morrowind.esm", "Tribunal.esm", "Bloodmoon.esm"})
	v.SetDefault("ping_timeout_sec", 5)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			zap.L().Warn("Could not read settings file, using defaults", zap.Error(err))
		}
	}

	// Read keys individually; Unmarshal does not see AutomaticEnv values.
	return &Settings{
		ServerPort:     v.GetInt("server_port"),
		FlatpakAppID:   v.GetString("flatpak_app_id"),
		EngineVersion:  v.GetString("engine_version"),
		ClientURL:      v.GetString("client_url"),
		ServerURL:      v.GetString("server_url"),
		ServerDir:      v.GetString("server_dir"),
		MarkerFiles:    v.GetStringSlice("marker_files"),
		PingTimeoutSec: v.GetInt("ping_timeout_sec"),
	}
}
