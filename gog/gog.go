// Package gog reads the goggame-*.info manifests GOG installers leave
// next to the game files.
package gog

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/itchio/wharf/state"
	"github.com/pkg/errors"
)

// Manifest is the part of goggame-<id>.info we care about
type Manifest struct {
	GameID    string     `json:"gameId"`
	Name      string     `json:"name"`
	PlayTasks []PlayTask `json:"playTasks"`
}

type PlayTask struct {
	Category   string `json:"category"`
	IsPrimary  bool   `json:"isPrimary"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	Arguments  string `json:"arguments"`
	WorkingDir string `json:"workingDir"`
	Type       string `json:"type"`
}

const gamesFolder = "drive_c/GOG Games"

// Adapter finds GOG manifests in wine prefixes
type Adapter struct {
	Consumer *state.Consumer
}

// NativeInstallDir returns the game folder inside the prefix, or "" if
// there's no GOG Games folder or more than one game in it.
func (a *Adapter) NativeInstallDir(targetPath string) (string, error) {
	root := filepath.Join(targetPath, filepath.FromSlash(gamesFolder))
	entries, err := ioutil.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.WithStack(err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	switch len(dirs) {
	case 0:
		return "", nil
	case 1:
		return filepath.Join(root, dirs[0]), nil
	default:
		sort.Strings(dirs)
		a.Consumer.Warnf("Several games in %s (%s), not guessing which one was installed", root, strings.Join(dirs, ", "))
		return "", nil
	}
}

func (a *Adapter) manifestPath(targetPath string) (string, error) {
	dir, err := a.NativeInstallDir(targetPath)
	if err != nil || dir == "" {
		return "", err
	}

	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return "", errors.WithStack(err)
	}
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, "goggame") && filepath.Ext(name) == ".info" {
			return filepath.Join(dir, name), nil
		}
	}
	return "", nil
}

func (a *Adapter) HasNativeManifest(targetPath string) bool {
	p, err := a.manifestPath(targetPath)
	return err == nil && p != ""
}

func (a *Adapter) ReadNativeManifest(targetPath string) (interface{}, error) {
	p, err := a.manifestPath(targetPath)
	if err != nil {
		return nil, err
	}
	if p == "" {
		return nil, errors.Errorf("no GOG manifest in %s", targetPath)
	}

	payload, err := ioutil.ReadFile(p)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	m := &Manifest{}
	err = json.Unmarshal(payload, m)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", p)
	}
	return m, nil
}

// ToLutrisConfig turns the primary play task into exe/args/working_dir
// and every other file task into a launch config. A manifest without a
// primary task yields an empty config.
func (a *Adapter) ToLutrisConfig(manifest interface{}, installDir string) (map[string]interface{}, error) {
	m, ok := manifest.(*Manifest)
	if !ok {
		return nil, errors.Errorf("expected a GOG manifest, got %T", manifest)
	}

	res := make(map[string]interface{})
	var launchConfigs []interface{}

	for _, task := range m.PlayTasks {
		if task.IsPrimary {
			res["exe"] = gamePath(installDir, task.Path)
			if task.Arguments != "" {
				res["args"] = task.Arguments
			}
			if task.WorkingDir != "" {
				res["working_dir"] = gamePath(installDir, task.WorkingDir)
			}
			continue
		}

		if task.Type != "FileTask" || task.Path == "" {
			continue
		}
		lc := map[string]interface{}{
			"name": task.Name,
			"exe":  gamePath(installDir, task.Path),
		}
		if task.Arguments != "" {
			lc["args"] = task.Arguments
		}
		if task.WorkingDir != "" {
			lc["working_dir"] = gamePath(installDir, task.WorkingDir)
		}
		launchConfigs = append(launchConfigs, lc)
	}

	if _, ok := res["exe"]; !ok {
		a.Consumer.Warnf("GOG manifest for %q has no primary play task, ignoring it", m.Name)
		return map[string]interface{}{}, nil
	}
	if len(launchConfigs) > 0 {
		res["launch_configs"] = launchConfigs
	}
	return res, nil
}

// manifests use windows separators
func gamePath(installDir string, p string) string {
	return filepath.Join(installDir, filepath.FromSlash(strings.Replace(p, "\\", "/", -1)))
}
