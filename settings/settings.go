package settings

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const AppName = "lutris"

const FileName = "installkit.toml"

// Settings says where the game library lives on this machine
type Settings struct {
	// ConfigDir holds installkit.toml
	ConfigDir string `mapstructure:"config_dir"`
	// GamesConfigDir holds one YAML file per installed game
	GamesConfigDir string `mapstructure:"games_config_dir"`
	DataDir        string `mapstructure:"data_dir"`
	CacheDir       string `mapstructure:"cache_dir"`
	DBPath         string `mapstructure:"db_path"`
	// GamesDir is where games are installed when no target is given
	GamesDir string `mapstructure:"games_dir"`

	// Services maps provider ids to offline mirror catalogs
	Services map[string]ServiceSettings `mapstructure:"services"`
}

type ServiceSettings struct {
	Catalog string `mapstructure:"catalog"`
}

// Defaults returns the per-OS default settings
func Defaults() (*Settings, error) {
	configDir, err := configHome(AppName)
	if err != nil {
		return nil, err
	}
	dataDir, err := dataHome(AppName)
	if err != nil {
		return nil, err
	}
	cacheDir, err := cacheHome(AppName)
	if err != nil {
		return nil, err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Settings{
		ConfigDir:      configDir,
		GamesConfigDir: filepath.Join(configDir, "games"),
		DataDir:        dataDir,
		CacheDir:       cacheDir,
		DBPath:         filepath.Join(dataDir, "pga.db"),
		GamesDir:       filepath.Join(home, "Games"),
		Services:       make(map[string]ServiceSettings),
	}, nil
}

// DefaultPath is where Load looks when no path is given
func DefaultPath() (string, error) {
	configDir, err := configHome(AppName)
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

// Load reads a settings file over the defaults. A missing file
// isn't an error.
func Load(settingsPath string) (*Settings, error) {
	s, err := Defaults()
	if err != nil {
		return nil, err
	}

	if settingsPath == "" {
		settingsPath, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	intermediate := make(map[string]interface{})
	_, err = toml.DecodeReader(f, &intermediate)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", settingsPath)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: s,
	})
	if err != nil {
		// internal error
		return nil, errors.WithStack(err)
	}

	err = decoder.Decode(intermediate)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid settings in %s", settingsPath)
	}

	if _, ok := intermediate["db_path"]; !ok {
		s.DBPath = filepath.Join(s.DataDir, "pga.db")
	}
	if _, ok := intermediate["games_config_dir"]; !ok {
		s.GamesConfigDir = filepath.Join(s.ConfigDir, "games")
	}
	return s, nil
}
