// Package operate builds installers the way every install command
// needs them: script from disk, collaborators from settings.
package operate

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/itchio/wharf/state"
	"github.com/lutris/installkit/config"
	"github.com/lutris/installkit/configurator"
	"github.com/lutris/installkit/database"
	"github.com/lutris/installkit/gog"
	"github.com/lutris/installkit/installer"
	"github.com/lutris/installkit/interpreter"
	"github.com/lutris/installkit/moddb"
	"github.com/lutris/installkit/runners"
	"github.com/lutris/installkit/services/mirror"
	"github.com/lutris/installkit/settings"
	"github.com/pkg/errors"
)

type Params struct {
	ScriptPath string

	// Service and AppID force the provider binding
	Service string
	AppID   string

	// TargetPath defaults to <games dir>/<game slug>
	TargetPath string
	// Variables override the script's own
	Variables map[string]string
	Extras    []string

	Settings *settings.Settings
	Store    *database.Store
	Consumer *state.Consumer
}

// Session is an installer and the interpreter it substitutes with
type Session struct {
	Installer   *installer.Installer
	Interpreter *interpreter.Interpreter
}

func LoadScript(scriptPath string) (*installer.Script, error) {
	f, err := os.Open(scriptPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	script, err := installer.ParseScript(f)
	if err != nil {
		return nil, errors.WithMessage(err, scriptPath)
	}
	return script, nil
}

// NewServices registers a mirror provider for every catalog listed
// in the settings.
func NewServices(s *settings.Settings, consumer *state.Consumer) (*installer.ServiceRegistry, error) {
	registry := installer.NewServiceRegistry()

	var ids []string
	for id := range s.Services {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		catalog := s.Services[id].Catalog
		if catalog == "" {
			continue
		}
		factory, err := mirror.Factory(id, catalog, consumer)
		if err != nil {
			return nil, errors.WithMessage(err, "loading catalog for "+id)
		}
		registry.Register(id, factory)
		consumer.Debugf("Registered provider %s (%s)", id, catalog)
	}
	return registry, nil
}

func Prepare(params Params) (*Session, error) {
	consumer := params.Consumer
	if consumer == nil {
		consumer = &state.Consumer{}
	}
	if params.Settings == nil || params.Store == nil {
		return nil, errors.New("operate.Prepare needs settings and a store")
	}

	script, err := LoadScript(params.ScriptPath)
	if err != nil {
		return nil, err
	}

	targetPath := params.TargetPath
	if targetPath == "" {
		targetPath = filepath.Join(params.Settings.GamesDir, script.GameSlug)
	}
	targetPath, err = filepath.Abs(targetPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	variables := script.Variables()
	for k, v := range params.Variables {
		variables[k] = v
	}

	interp := interpreter.New(interpreter.Params{
		TargetPath: targetPath,
		CacheDir:   filepath.Join(params.Settings.CacheDir, "installer", script.GameSlug),
		Version:    script.Version,
		Variables:  variables,
		Extras:     params.Extras,
	})

	services, err := NewServices(params.Settings, consumer)
	if err != nil {
		return nil, err
	}

	inst, err := installer.New(installer.Params{
		Script:        script,
		Interpreter:   interp,
		Service:       params.Service,
		AppID:         params.AppID,
		Services:      services,
		Games:         params.Store,
		Configs:       config.NewStore(params.Settings.GamesConfigDir, consumer),
		Runners:       runners.NewRegistry(),
		Finder:        &configurator.Finder{Consumer: consumer},
		NativeAdapter: &gog.Adapter{Consumer: consumer},
		URLRewriter:   moddb.NewHelper(consumer),
		Consumer:      consumer,
	})
	if err != nil {
		return nil, err
	}

	return &Session{
		Installer:   inst,
		Interpreter: interp,
	}, nil
}
