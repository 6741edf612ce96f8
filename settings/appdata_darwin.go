//go:build darwin
// +build darwin

package settings

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// e.g. `~/Library/Application Support/lutris`
func configHome(appName string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WithStack(err)
	}
	return filepath.Join(home, "Library", "Application Support", appName), nil
}

func dataHome(appName string) (string, error) {
	return configHome(appName)
}

func cacheHome(appName string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WithStack(err)
	}
	return filepath.Join(home, "Library", "Caches", appName), nil
}
