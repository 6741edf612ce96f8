//go:build windows
// +build windows

package settings

import (
	"os"
	"path/filepath"
)

// `%APPDATA%\lutris` aka `C:\Users\foobar\AppData\Roaming\lutris`
func configHome(appName string) (string, error) {
	return filepath.Join(os.Getenv("APPDATA"), appName), nil
}

func dataHome(appName string) (string, error) {
	return filepath.Join(os.Getenv("LOCALAPPDATA"), appName), nil
}

func cacheHome(appName string) (string, error) {
	return filepath.Join(os.Getenv("LOCALAPPDATA"), appName, "cache"), nil
}
