// Package paths resolves configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "slotview"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "SLOTVIEW_CONFIG_DIR"
	EnvDataDir   = "SLOTVIEW_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	getenv        func(string) string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	getenv:        os.Getenv,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/slotview (fallback ~/.config/slotview)
// macOS:   ~/Library/Application Support/slotview
// Windows: %APPDATA%/slotview
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
// Stored layouts are per user, not per working directory.
//
// Linux:   $XDG_DATA_HOME/slotview (fallback ~/.local/share/slotview)
// macOS:   ~/Library/Application Support/slotview/data
// Windows: %APPDATA%/slotview/data
func DefaultDataDir() (string, error) {
	if platformDir.goos != "linux" {
		dir, err := xdgDir("", "")
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "data"), nil
	}
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// xdgDir follows the XDG base directory layout on Linux and defers to
// os.UserConfigDir elsewhere.
func xdgDir(env, homeFallback string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if base := platformDir.getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeFallback, AppName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > SLOTVIEW_CONFIG_DIR env > DefaultConfigDir().
// Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	return resolve(DefaultConfigDir, flag, platformDir.getenv(EnvConfigDir))
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configValue > SLOTVIEW_DATA_DIR env > DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolve(DefaultDataDir, flag, configValue, platformDir.getenv(EnvDataDir))
}

// resolve returns the first non-empty candidate as an absolute path, or the
// fallback when all are empty.
func resolve(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}
