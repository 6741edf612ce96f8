package configurator

import (
	"path/filepath"

	"github.com/itchio/ox"
	"github.com/itchio/wharf/state"
	"github.com/lutris/installkit/filtering"
	"github.com/pkg/errors"
)

// Finder picks the main executable of an installed game
type Finder struct {
	Consumer *state.Consumer
	// Runtime defaults to the current one
	Runtime *ox.Runtime
}

func (f *Finder) consumer() *state.Consumer {
	if f.Consumer == nil {
		return &state.Consumer{}
	}
	return f.Consumer
}

func (f *Finder) arch() string {
	if f.Runtime != nil {
		return f.Runtime.Arch()
	}
	return ox.CurrentRuntime().Arch()
}

// FindLinuxExecutable returns the absolute path of the most likely
// native executable or shell script in targetPath.
func (f *Finder) FindLinuxExecutable(targetPath string, makeExecutable bool) (string, error) {
	consumer := f.consumer()

	verdict, err := Configure(targetPath, filtering.FilterPaths)
	if err != nil {
		return "", err
	}

	verdict.Candidates = SelectByFunc(verdict.Candidates, func(c *Candidate) bool {
		return (c.Flavor == FlavorNativeLinux || c.Flavor == FlavorScript) && Score(c) > 0
	})
	verdict.FilterPlatform("linux", f.arch())

	if len(verdict.Candidates) == 0 {
		return "", errors.Errorf("no linux executable found in %s", targetPath)
	}

	verdict.Candidates = verdict.Candidates[:1]
	best := verdict.Candidates[0]
	consumer.Infof("Picked %s (%s) as the main executable", best.Path, best.Flavor)

	if makeExecutable {
		_, err := verdict.FixPermissions(consumer, false)
		if err != nil {
			return "", err
		}
	}

	return filepath.Join(targetPath, filepath.FromSlash(best.Path)), nil
}

// FindWindowsExecutable returns the absolute path of the most likely
// game .exe in targetPath, which may be a wine prefix.
func (f *Finder) FindWindowsExecutable(targetPath string) (string, error) {
	consumer := f.consumer()

	verdict, err := Configure(targetPath, filtering.FilterPrefixPaths)
	if err != nil {
		return "", err
	}

	verdict.Candidates = SelectByFunc(verdict.Candidates, func(c *Candidate) bool {
		if c.Flavor != FlavorNativeWindows || Score(c) == 0 {
			return false
		}
		info := c.WindowsInfo
		return info == nil || (info.InstallerType == "" && !info.Uninstaller)
	})
	verdict.FilterPlatform("windows", f.arch())

	if len(verdict.Candidates) == 0 {
		return "", errors.Errorf("no windows executable found in %s", targetPath)
	}

	best := verdict.Candidates[0]
	consumer.Infof("Picked %s as the main executable", best.Path)
	return filepath.Join(targetPath, filepath.FromSlash(best.Path)), nil
}
