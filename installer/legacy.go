package installer

import (
	"os"
	"path/filepath"

	"github.com/itchio/ox"
)

// Launcher keys older scripts put at the root of the script rather
// than in the `game` section.
var launcherKeys = []string{"exe", "iso", "rom", "disk", "main_file"}

var is64 = func() bool {
	return ox.CurrentRuntime().Is64
}

// gameLauncher returns the first launcher shortcut of the script, or
// "" if there is none. exe64 wins over exe on 64-bit hosts.
func gameLauncher(script *Script) (string, interface{}) {
	if is64() {
		if v, ok := script.Get("exe64"); ok && v != nil {
			return "exe", v
		}
	}

	for _, key := range launcherKeys {
		if v, ok := script.Get(key); ok && v != nil {
			return key, v
		}
	}
	return "", nil
}

// resolveLauncher maps installed file ids to their path. Plain
// strings are also tried relative to the install folder.
func (inst *Installer) resolveLauncher(value interface{}, installedFiles map[string]string) interface{} {
	switch tv := value.(type) {
	case []interface{}:
		res := make([]interface{}, 0, len(tv))
		for _, item := range tv {
			s := stringify(item)
			if p, ok := installedFiles[s]; ok {
				res = append(res, p)
			} else {
				res = append(res, item)
			}
		}
		return res
	case string:
		if tv == "" {
			return tv
		}
		if p, ok := installedFiles[tv]; ok {
			return p
		}
		target := inst.interpreter.TargetPath()
		if target != "" {
			candidate := filepath.Join(target, tv)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		return tv
	default:
		return value
	}
}
