// Package interpreter substitutes $VARIABLES in install script values.
package interpreter

import (
	"fmt"
	"os"
	"os/user"
	"sort"
	"strings"
	"sync"
)

type Params struct {
	// TargetPath is where the game is installed ($GAMEDIR)
	TargetPath string
	// CacheDir holds downloaded files ($CACHE)
	CacheDir string
	Version  string
	// Variables are the script's `variables` section
	Variables map[string]interface{}
	Extras    []string
}

// Interpreter knows the values of the variables an install script
// may refer to. Game files are added as they land on disk.
type Interpreter struct {
	targetPath string
	extras     []string

	mu           sync.Mutex
	replacements map[string]string
	gameFiles    map[string]string
}

func New(params Params) *Interpreter {
	replacements := map[string]string{
		"GAMEDIR": params.TargetPath,
		"CACHE":   params.CacheDir,
		"HOME":    os.Getenv("HOME"),
		"VERSION": params.Version,
		"USER":    currentUser(),
	}
	for k, v := range params.Variables {
		replacements[k] = fmt.Sprintf("%v", v)
	}

	return &Interpreter{
		targetPath:   params.TargetPath,
		extras:       append([]string(nil), params.Extras...),
		replacements: replacements,
		gameFiles:    make(map[string]string),
	}
}

func currentUser() string {
	u, err := user.Current()
	if err != nil {
		return os.Getenv("USER")
	}
	return u.Username
}

func (i *Interpreter) TargetPath() string {
	return i.targetPath
}

func (i *Interpreter) Extras() []string {
	return append([]string(nil), i.extras...)
}

// SetGameFile records where a file ended up, so `$id` resolves to it
func (i *Interpreter) SetGameFile(id string, path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.gameFiles[id] = path
}

// GameFiles returns a copy of the installed files map
func (i *Interpreter) GameFiles() map[string]string {
	i.mu.Lock()
	defer i.mu.Unlock()
	res := make(map[string]string, len(i.gameFiles))
	for k, v := range i.gameFiles {
		res[k] = v
	}
	return res
}

// Substitute replaces every `$KEY` in value. Longer keys are replaced
// first, so $GAMEDIR never gets mangled by a $GAME file id.
func (i *Interpreter) Substitute(value string) string {
	if !strings.Contains(value, "$") {
		return value
	}

	i.mu.Lock()
	all := make(map[string]string, len(i.replacements)+len(i.gameFiles))
	for k, v := range i.replacements {
		all[k] = v
	}
	for k, v := range i.gameFiles {
		all[k] = v
	}
	i.mu.Unlock()

	keys := make([]string, 0, len(all))
	for k := range all {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(a, b int) bool {
		if len(keys[a]) != len(keys[b]) {
			return len(keys[a]) > len(keys[b])
		}
		return keys[a] < keys[b]
	})

	var pairs []string
	for _, k := range keys {
		pairs = append(pairs, "$"+k, all[k])
	}
	return strings.NewReplacer(pairs...).Replace(value)
}
