package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/dchest/safefile"
	"github.com/itchio/wharf/state"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store keeps one YAML file per game config, named after its config id
type Store struct {
	Dir      string
	Consumer *state.Consumer

	now func() time.Time
}

func NewStore(dir string, consumer *state.Consumer) *Store {
	if consumer == nil {
		consumer = &state.Consumer{}
	}
	return &Store{
		Dir:      dir,
		Consumer: consumer,
		now:      time.Now,
	}
}

func (s *Store) path(configID string) string {
	return filepath.Join(s.Dir, configID+".yml")
}

// LoadGameConfig returns the config stored under configID. A missing
// file yields an empty config.
func (s *Store) LoadGameConfig(runner string, configID string) (map[string]interface{}, error) {
	res := make(map[string]interface{})
	if configID == "" {
		return res, nil
	}

	configPath := s.path(configID)
	payload, err := ioutil.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.Consumer.Warnf("No config file for %s (runner %s) at %s", configID, runner, configPath)
			return res, nil
		}
		return nil, errors.WithStack(err)
	}

	err = yaml.Unmarshal(payload, &res)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", configPath)
	}
	return res, nil
}

// WriteGameConfig atomically writes a new config file for slug and
// returns its config id.
func (s *Store) WriteGameConfig(slug string, config map[string]interface{}) (string, error) {
	err := os.MkdirAll(s.Dir, 0755)
	if err != nil {
		return "", errors.Wrap(err, "creating games config directory")
	}

	configID := fmt.Sprintf("%s-%d", slug, s.now().Unix())
	configPath := s.path(configID)

	payload, err := yaml.Marshal(config)
	if err != nil {
		return "", errors.Wrap(err, "serializing game config")
	}

	f, err := safefile.Create(configPath, 0644)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer f.Close()

	_, err = f.Write(payload)
	if err != nil {
		return "", errors.WithStack(err)
	}

	err = f.Commit()
	if err != nil {
		return "", errors.WithStack(err)
	}

	s.Consumer.Debugf("Wrote game config to %s", configPath)
	return configID, nil
}
