package installer

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A Script is a parsed installer, as served by the website or read
// from a local .yml/.json file. It is never modified once parsed:
// every accessor hands out copies.
type Script struct {
	Name      string `mapstructure:"name"`
	GameSlug  string `mapstructure:"game_slug"`
	Slug      string `mapstructure:"slug"`
	Version   string `mapstructure:"version"`
	Year      int    `mapstructure:"year"`
	Runner    string `mapstructure:"runner"`
	IsDLC     bool   `mapstructure:"is_dlc"`
	DLCID     string `mapstructure:"dlcid"`
	DiscordID string `mapstructure:"discord_id"`

	raw     map[string]interface{}
	content map[string]interface{}
	// false when the `script` key holds something other than a mapping
	contentOK bool
}

// ParseScript reads a YAML (or JSON, which is YAML) installer
func ParseScript(r io.Reader) (*Script, error) {
	payload, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	intermediate := make(map[string]interface{})
	err = yaml.Unmarshal(payload, &intermediate)
	if err != nil {
		return nil, errors.Wrap(err, "parsing install script")
	}

	return NewScript(intermediate)
}

// NewScript builds a script from an already-decoded installer map.
// The map is copied, callers may keep using it.
func NewScript(installer map[string]interface{}) (*Script, error) {
	s := &Script{
		raw: copyMap(installer),
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           s,
	})
	if err != nil {
		// internal error
		return nil, errors.WithStack(err)
	}

	err = decoder.Decode(s.raw)
	if err != nil {
		return nil, errors.Wrap(err, "decoding install script")
	}

	switch content := s.raw["script"].(type) {
	case nil:
		s.content = make(map[string]interface{})
		s.contentOK = true
	default:
		m, err := toStringMap(content)
		if err == nil {
			s.content = m
			s.contentOK = true
		}
	}

	return s, nil
}

// InstallerField returns a root-level installer value as a string,
// or "" if it's missing or null.
func (s *Script) InstallerField(key string) string {
	return stringify(s.raw[key])
}

// Content returns a copy of the `script` section
func (s *Script) Content() map[string]interface{} {
	return copyMap(s.content)
}

// Get returns a copy of a key of the `script` section
func (s *Script) Get(key string) (interface{}, bool) {
	v, ok := s.content[key]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

func (s *Script) Has(key string) bool {
	_, ok := s.content[key]
	return ok
}

func (s *Script) Requires() string {
	return stringify(s.content["requires"])
}

func (s *Script) Extends() string {
	return stringify(s.content["extends"])
}

func (s *Script) Variables() map[string]interface{} {
	m, err := toStringMap(s.content["variables"])
	if err != nil || m == nil {
		return make(map[string]interface{})
	}
	return m
}

// GameValue looks up a key in the `game` section, if it is a mapping
func (s *Script) GameValue(key string) interface{} {
	game, err := toStringMap(s.content["game"])
	if err != nil || game == nil {
		return nil
	}
	return game[key]
}

// Steps returns the command name of each `installer` step, in order
func (s *Script) Steps() []string {
	steps, _ := s.content["installer"].([]interface{})
	var names []string
	for _, step := range steps {
		m, err := toStringMap(step)
		if err != nil {
			continue
		}
		for name := range m {
			names = append(names, name)
			break
		}
	}
	return names
}

// Pretty returns an indented JSON rendition of the `script` section
func (s *Script) Pretty() string {
	marshalled, err := json.MarshalIndent(s.content, "", "    ")
	if err != nil {
		return ""
	}
	return string(marshalled)
}

func stringify(v interface{}) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case int:
		return strconv.Itoa(tv)
	case int64:
		return strconv.FormatInt(tv, 10)
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(tv)
	default:
		return fmt.Sprintf("%v", tv)
	}
}
