package filtering

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Filter returns false for entries that should be skipped. relPath is
// slash-separated and relative to the walk root.
type Filter func(relPath string, fileInfo os.FileInfo) bool

var IgnoredPaths = []string{
	".git",
	".hg",
	".svn",
	".DS_Store",
	"__MACOSX",
	"._*",
	"Thumbs.db",
}

// Wine prefix folders that never hold the game itself
var IgnoredPrefixPaths = []string{
	"dosdevices",
	"drive_c/windows",
	"drive_c/users",
	"drive_c/ProgramData",
	"drive_c/Program Files/Common Files",
	"drive_c/Program Files (x86)/Common Files",
	"drive_c/Program Files/Internet Explorer",
	"drive_c/Program Files (x86)/Internet Explorer",
	"drive_c/Program Files/Windows Media Player",
	"drive_c/Program Files (x86)/Windows Media Player",
	"drive_c/Program Files/Windows NT",
	"drive_c/Program Files (x86)/Windows NT",
}

// FilterPaths filters out known bad folder/files
func FilterPaths(relPath string, fileInfo os.FileInfo) bool {
	name := fileInfo.Name()
	for _, pattern := range IgnoredPaths {
		match, _ := filepath.Match(pattern, name)
		if match {
			return false
		}
	}

	return true
}

// FilterPrefixPaths also skips the system folders of wine prefixes
func FilterPrefixPaths(relPath string, fileInfo os.FileInfo) bool {
	if !FilterPaths(relPath, fileInfo) {
		return false
	}

	cleaned := path.Clean(relPath)
	for _, ignored := range IgnoredPrefixPaths {
		if strings.EqualFold(cleaned, ignored) {
			return false
		}
	}
	return true
}
