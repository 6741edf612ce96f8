package installer

import (
	"strings"

	"github.com/pkg/errors"
)

// A ResolvedConfig is the game config an install ends up with
type ResolvedConfig struct {
	System     map[string]interface{}
	RunnerName string
	Runner     map[string]interface{}
	Game       map[string]interface{}
	// Extra holds sections inherited from a base game we don't touch
	Extra map[string]interface{}

	Name      string
	Slug      string
	GameSlug  string
	Version   string
	Requires  string
	Year      int
	Script    map[string]interface{}
	Variables map[string]interface{}

	// Service and ServiceID are empty when no provider is bound
	Service   string
	ServiceID string
}

// ToMap returns the document persisted by the config store
func (cfg *ResolvedConfig) ToMap() map[string]interface{} {
	res := make(map[string]interface{})
	for k, v := range cfg.Extra {
		res[k] = copyValue(v)
	}

	game := copyMap(cfg.Game)
	if game == nil {
		game = make(map[string]interface{})
	}
	res["game"] = game
	if cfg.System != nil {
		res["system"] = copyMap(cfg.System)
	}
	if cfg.RunnerName != "" && cfg.Runner != nil {
		res[cfg.RunnerName] = copyMap(cfg.Runner)
	}

	res["name"] = cfg.Name
	res["script"] = copyMap(cfg.Script)
	res["variables"] = copyMap(cfg.Variables)
	res["version"] = cfg.Version
	res["slug"] = cfg.Slug
	res["game_slug"] = cfg.GameSlug
	if cfg.Requires != "" {
		res["requires"] = cfg.Requires
	} else {
		res["requires"] = nil
	}
	if cfg.Year != 0 {
		res["year"] = cfg.Year
	} else {
		res["year"] = nil
	}

	if cfg.Service != "" {
		res["service"] = cfg.Service
		res["service_id"] = cfg.ServiceID
	}
	return res
}

// ResolveConfig composes the game config: the base game's config for
// `requires` scripts, the script's sections with variables
// substituted, launcher shortcuts, and auto-detected executables.
// installedFiles maps file ids to where they ended up on disk.
func (inst *Installer) ResolveConfig(installedFiles map[string]string) (*ResolvedConfig, error) {
	cfg := &ResolvedConfig{
		RunnerName: inst.Runner,
		Game:       make(map[string]interface{}),
	}

	if inst.Requires != "" {
		err := inst.loadBaseConfig(cfg)
		if err != nil {
			return nil, err
		}
	}

	script := inst.Script
	if system, ok := script.Get("system"); ok {
		substituted, err := inst.substituteConfig(system)
		if err != nil {
			return nil, err
		}
		cfg.System = substituted
	}

	if inst.Runner != "" {
		if section, ok := script.Get(inst.Runner); ok && !isEmptyValue(section) {
			substituted, err := inst.substituteConfig(section)
			if err != nil {
				return nil, err
			}
			cfg.Runner = substituted
		}
	}

	launcher, launcherValue := gameLauncher(script)
	if launcher != "" {
		cfg.Game[launcher] = inst.resolveLauncher(launcherValue, installedFiles)
	}

	if section, ok := script.Get("game"); ok {
		err := inst.mergeGameSection(cfg, section)
		if err != nil {
			return nil, err
		}
	}

	cfg.Name = inst.Name
	cfg.Slug = inst.Slug
	cfg.GameSlug = inst.GameSlug
	cfg.Version = inst.Version
	cfg.Requires = inst.Requires
	cfg.Year = inst.Year
	cfg.Script = script.Content()
	cfg.Variables = copyMap(inst.Variables)
	if inst.Service != nil {
		cfg.Service = inst.Service.ID()
		cfg.ServiceID = inst.ServiceAppID
	}
	return cfg, nil
}

func (inst *Installer) loadBaseConfig(cfg *ResolvedConfig) error {
	base, err := inst.games.GameByField(inst.Requires, "installer_slug")
	if err != nil {
		return errors.Wrap(err, "looking up required game")
	}
	if base == nil {
		base, err = inst.games.GameByField(inst.Requires, "slug")
		if err != nil {
			return errors.Wrap(err, "looking up required game")
		}
	}
	if base == nil {
		return &Error{
			Code:    CodeUnresolvedRequires,
			Message: "No game matched '" + inst.Requires + "' on installer_slug or slug",
			Data:    inst.Requires,
		}
	}

	if inst.configs == nil {
		return errors.New("no config store to load the required game's config from")
	}

	baseConfig, err := inst.configs.LoadGameConfig(inst.Runner, base.ConfigPath)
	if err != nil {
		return errors.Wrapf(err, "loading config of %s", base.Slug)
	}

	for k, v := range baseConfig {
		switch k {
		case "game":
			game, err := toStringMap(v)
			if err != nil {
				return err
			}
			if game != nil {
				cfg.Game = game
			}
		case "system":
			system, err := toStringMap(v)
			if err != nil {
				return err
			}
			cfg.System = system
		case inst.Runner:
			runner, err := toStringMap(v)
			if err != nil {
				return err
			}
			cfg.Runner = runner
		default:
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]interface{})
			}
			cfg.Extra[k] = copyValue(v)
		}
	}
	return nil
}

func (inst *Installer) mergeGameSection(cfg *ResolvedConfig, section interface{}) error {
	scriptGame, err := toStringMap(section)
	if err != nil {
		return scriptingError("Invalid 'game' section", section)
	}

	merged := copyMap(cfg.Game)
	for k, v := range scriptGame {
		merged[k] = v
	}

	game, err := inst.substituteConfig(merged)
	if err != nil {
		return err
	}

	if exe, ok := game["exe"].(string); ok {
		switch {
		case strings.Contains(exe, AutoELFExe):
			found, err := inst.findExecutable(func(f ExecutableFinder, target string) (string, error) {
				return f.FindLinuxExecutable(target, true)
			})
			if err != nil {
				return err
			}
			game["exe"] = found
		case strings.Contains(exe, AutoWin32Exe):
			found, err := inst.findExecutable(func(f ExecutableFinder, target string) (string, error) {
				return f.FindWindowsExecutable(target)
			})
			if err != nil {
				return err
			}
			game["exe"] = found
		}
	}

	cfg.Game = game
	return nil
}

func (inst *Installer) findExecutable(find func(f ExecutableFinder, target string) (string, error)) (string, error) {
	target := inst.interpreter.TargetPath()
	if inst.finder == nil {
		return "", discoveryError(target, errors.New("no executable finder"))
	}

	found, err := find(inst.finder, target)
	if err != nil {
		return "", discoveryError(target, err)
	}
	if found == "" {
		return "", discoveryError(target, nil)
	}
	return found, nil
}

// substituteConfig returns a copy of a config section with variables
// substituted in its values. "true" and "false" (in any case) become
// booleans. Lists and mappings are substituted one level deep, lists
// of mappings (like launch_configs) have each mapping substituted.
func (inst *Installer) substituteConfig(section interface{}) (map[string]interface{}, error) {
	m, err := toStringMap(section)
	if err != nil {
		return nil, err
	}

	res := make(map[string]interface{}, len(m))
	for key, value := range m {
		if s, ok := value.(string); ok {
			if strings.EqualFold(s, "true") {
				value = true
			} else if strings.EqualFold(s, "false") {
				value = false
			}
		}

		switch tv := value.(type) {
		case bool:
			res[key] = tv
		case []interface{}:
			list := make([]interface{}, len(tv))
			for i, item := range tv {
				switch item.(type) {
				case map[string]interface{}, map[interface{}]interface{}:
					sub, err := inst.substituteValues(item)
					if err != nil {
						return nil, err
					}
					list[i] = sub
				default:
					list[i] = inst.substituteScalar(item)
				}
			}
			res[key] = list
		case map[string]interface{}, map[interface{}]interface{}:
			sub, err := inst.substituteValues(tv)
			if err != nil {
				return nil, err
			}
			res[key] = sub
		default:
			res[key] = inst.substituteScalar(tv)
		}
	}
	return res, nil
}

func (inst *Installer) substituteValues(m interface{}) (map[string]interface{}, error) {
	sm, err := toStringMap(m)
	if err != nil {
		return nil, err
	}
	res := make(map[string]interface{}, len(sm))
	for k, v := range sm {
		res[k] = inst.substituteScalar(v)
	}
	return res, nil
}

func (inst *Installer) substituteScalar(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		return inst.interpreter.Substitute(s)
	}
	return v
}

func isEmptyValue(v interface{}) bool {
	switch tv := v.(type) {
	case nil:
		return true
	case string:
		return tv == ""
	case map[string]interface{}:
		return len(tv) == 0
	case map[interface{}]interface{}:
		return len(tv) == 0
	case []interface{}:
		return len(tv) == 0
	case bool:
		return !tv
	}
	return false
}
