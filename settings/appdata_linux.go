//go:build linux
// +build linux

package settings

import (
	"os"
	"path/filepath"
)

// e.g. `~/.config/lutris`
func configHome(appName string) (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config", appName), nil
}

// e.g. `~/.local/share/lutris`, where pga.db lives
func dataHome(appName string) (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"), appName), nil
}

func cacheHome(appName string) (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache", appName), nil
}

func xdgDir(envVar string, fallback string, appName string) string {
	base := os.Getenv(envVar)
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), fallback)
	}
	return filepath.Join(base, appName)
}
