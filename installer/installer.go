package installer

import (
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/itchio/wharf/state"
	"github.com/pkg/errors"
)

type Params struct {
	Script      *Script
	Interpreter Interpreter

	// Service forces a provider, when set and registered
	Service string
	// AppID forces the provider-side identifier
	AppID string

	Services *ServiceRegistry

	Games         GameStore
	Configs       ConfigStore
	Runners       RunnerRegistry
	Finder        ExecutableFinder
	NativeAdapter NativeConfigAdapter
	URLRewriter   URLRewriter

	Consumer *state.Consumer
}

func (p Params) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Script, validation.Required),
		validation.Field(&p.Interpreter, validation.Required),
		validation.Field(&p.Games, validation.Required),
	)
}

// An Installer holds everything we know about an install before the
// script steps run: who the game is, where its files come from,
// and how it should be configured.
type Installer struct {
	Script *Script

	Name      string
	Slug      string
	GameSlug  string
	Version   string
	Year      int
	Runner    string
	DiscordID string

	Requires  string
	Extends   string
	Variables map[string]interface{}

	ScriptFiles []*InstallerFile

	// Service is nil when no provider is bound
	Service      Service
	ServiceAppID string

	// GameID is the id of the record to update, 0 for a new one
	GameID int64

	interpreter   Interpreter
	games         GameStore
	configs       ConfigStore
	runners       RunnerRegistry
	finder        ExecutableFinder
	nativeAdapter NativeConfigAdapter
	urlRewriter   URLRewriter
	consumer      *state.Consumer
}

// New validates a script and resolves its identity and provider.
// It doesn't write anything.
func New(params Params) (*Installer, error) {
	err := params.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "validating installer params")
	}

	consumer := params.Consumer
	if consumer == nil {
		consumer = &state.Consumer{}
	}

	script := params.Script
	findings := ValidateScript(script, params.Runners)
	if len(findings) > 0 {
		return nil, validationError(findings)
	}

	files, err := parseFiles(script.GameSlug, script.content["files"])
	if err != nil {
		return nil, err
	}

	inst := &Installer{
		Script:      script,
		Name:        script.Name,
		Slug:        script.Slug,
		GameSlug:    script.GameSlug,
		Version:     script.Version,
		Year:        script.Year,
		Runner:      script.Runner,
		DiscordID:   script.DiscordID,
		Requires:    script.Requires(),
		Extends:     script.Extends(),
		Variables:   script.Variables(),
		ScriptFiles: files,

		interpreter:   params.Interpreter,
		games:         params.Games,
		configs:       params.Configs,
		runners:       params.Runners,
		finder:        params.Finder,
		nativeAdapter: params.NativeAdapter,
		urlRewriter:   params.URLRewriter,
		consumer:      consumer,
	}

	inst.bindService(params.Services, params.Service)
	inst.bindAppID(params.AppID)

	err = inst.resolveGameID()
	if err != nil {
		return nil, err
	}

	return inst, nil
}

func (inst *Installer) bindService(services *ServiceRegistry, explicit string) {
	if explicit != "" && !services.Has(explicit) {
		inst.consumer.Warnf("Provider %s isn't available, picking one from the script", explicit)
	}

	serviceID := ""
	switch {
	case explicit != "" && services.Has(explicit):
		serviceID = explicit
	default:
		for _, kind := range ServiceKinds {
			if kind.matchesRunner(inst.Runner) && services.Has(kind.ID) {
				serviceID = kind.ID
				break
			}
		}
		if serviceID != "" {
			break
		}
		for _, kind := range ServiceKinds {
			if kind.matchesVersion(inst.Version) && services.Has(kind.ID) {
				serviceID = kind.ID
				break
			}
		}
	}

	if serviceID == "" {
		return
	}
	inst.Service = services.New(serviceID)
	inst.consumer.Debugf("Bound to provider %s", serviceID)
}

func (inst *Installer) bindAppID(explicit string) {
	script := inst.Script
	if script.IsDLC {
		// DLCs only go by their own id, even when it's missing
		inst.ServiceAppID = script.DLCID
		return
	}

	if explicit != "" {
		inst.ServiceAppID = explicit
		return
	}

	if inst.Service == nil {
		return
	}

	kind := KindOf(inst.Service.ID())
	for _, field := range kind.AppIDFields {
		var value string
		switch field.Source {
		case FromInstaller:
			value = script.InstallerField(field.Key)
		case FromGameSection:
			value = stringify(script.GameValue(field.Key))
		}
		if value != "" {
			inst.ServiceAppID = value
			return
		}
	}

	inst.ServiceAppID = script.InstallerField("service_id")
}

func (inst *Installer) resolveGameID() error {
	game, err := inst.games.GameByField(inst.GameSlug, "slug")
	if err != nil {
		return errors.Wrap(err, "looking up existing game")
	}

	if game == nil {
		return nil
	}

	if inst.Extends != "" || !game.Installed {
		inst.GameID = game.ID
	}
	return nil
}

func (inst *Installer) Interpreter() Interpreter {
	return inst.interpreter
}

// ServiceID returns the id of the bound provider, or ""
func (inst *Installer) ServiceID() string {
	if inst.Service == nil {
		return ""
	}
	return inst.Service.ID()
}

func (inst *Installer) serviceRequest() *ServiceRequest {
	return &ServiceRequest{
		GameSlug: inst.GameSlug,
		Slug:     inst.Slug,
		AppID:    inst.ServiceAppID,
		Runner:   inst.Runner,
		Version:  inst.Version,
	}
}

// CreatesGameFolder returns false for scripts that install into
// another game's folder, or that don't put anything on disk.
func (inst *Installer) CreatesGameFolder() bool {
	if inst.Requires != "" || inst.Extends != "" {
		return false
	}
	if strings.Contains(inst.Runner, "steam") {
		return false
	}

	steps := inst.Script.Steps()
	if len(steps) == 0 {
		return false
	}

	if len(inst.ScriptFiles) > 0 {
		return true
	}
	if inst.Script.GameValue("gog") != nil || inst.Script.GameValue("prefix") != nil {
		return true
	}
	for _, step := range steps {
		if step == "insert-disc" {
			return true
		}
	}
	return false
}

// ScriptPretty returns the whole installer as indented JSON
func (inst *Installer) ScriptPretty() string {
	marshalled, err := json.MarshalIndent(inst.Script.raw, "", "    ")
	if err != nil {
		return inst.Script.Pretty()
	}
	return string(marshalled)
}
