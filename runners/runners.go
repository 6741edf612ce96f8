// Package runners knows which platform each runner emulates.
package runners

import (
	"fmt"
	"sort"

	"github.com/arbovm/levenshtein"
)

// Runner describes something that can run games
type Runner struct {
	Name     string
	Platform string
}

var runners = []Runner{
	{"linux", "Linux"},
	{"steam", "Linux"},
	{"web", "Web"},
	{"wine", "Windows"},
	{"winesteam", "Windows"},
	{"dosbox", "MS-DOS"},
	{"scummvm", "ScummVM"},
	{"libretro", "Multi-system"},
	{"mame", "Arcade"},
	{"mess", "Multi-system"},
	{"mednafen", "Multi-system"},
	{"dolphin", "Nintendo GameCube"},
	{"pcsx2", "Sony PlayStation 2"},
	{"rpcs3", "Sony PlayStation 3"},
	{"ppsspp", "Sony PlayStation Portable"},
	{"mupen64plus", "Nintendo 64"},
	{"snes9x", "Nintendo SNES"},
	{"desmume", "Nintendo DS"},
	{"citra", "Nintendo 3DS"},
	{"yuzu", "Nintendo Switch"},
	{"hatari", "Atari ST"},
	{"fsuae", "Amiga"},
	{"vice", "Commodore 64"},
	{"openmsx", "MSX"},
	{"atari800", "Atari 8bit computers"},
	{"jzintv", "Intellivision"},
	{"o2em", "Magnavox Odyssey²"},
	{"osmose", "Sega Master System"},
	{"reicast", "Sega Dreamcast"},
	{"stella", "Atari 2600"},
	{"zdoom", "Linux"},
}

// Registry resolves runner names
type Registry struct {
	byName map[string]Runner
}

func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Runner)}
	for _, runner := range runners {
		r.byName[runner.Name] = runner
	}
	return r
}

// PlatformOf returns the platform of a runner. Unknown runners get an
// error suggesting the closest known name.
func (r *Registry) PlatformOf(name string) (string, error) {
	runner, ok := r.byName[name]
	if !ok {
		if suggestion := r.Suggest(name); suggestion != "" {
			return "", fmt.Errorf("Unknown runner '%s', did you mean '%s'?", name, suggestion)
		}
		return "", fmt.Errorf("Unknown runner '%s'", name)
	}
	return runner.Platform, nil
}

// Suggest returns the known runner name closest to name, or "" if
// nothing is close enough.
func (r *Registry) Suggest(name string) string {
	best := ""
	bestDistance := -1
	for _, runnerName := range r.Names() {
		d := levenshtein.Distance(name, runnerName)
		if bestDistance < 0 || d < bestDistance {
			best = runnerName
			bestDistance = d
		}
	}

	if bestDistance < 0 || bestDistance > len(name)/2+1 {
		return ""
	}
	return best
}

func (r *Registry) Names() []string {
	var names []string
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
