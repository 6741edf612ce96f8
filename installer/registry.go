package installer

import (
	"sort"
	"strings"
)

const (
	ServiceSteam        = "steam"
	ServiceGOG          = "gog"
	ServiceHumbleBundle = "humblebundle"
)

// ServiceFactory creates a provider session
type ServiceFactory func() Service

// ServiceRegistry lists the providers available to an installer
type ServiceRegistry struct {
	factories map[string]ServiceFactory
}

func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{
		factories: make(map[string]ServiceFactory),
	}
}

func (r *ServiceRegistry) Register(id string, factory ServiceFactory) {
	r.factories[id] = factory
}

func (r *ServiceRegistry) Has(id string) bool {
	if r == nil {
		return false
	}
	_, ok := r.factories[id]
	return ok
}

// New returns a fresh provider, or nil if id isn't registered
func (r *ServiceRegistry) New(id string) Service {
	if r == nil {
		return nil
	}
	factory, ok := r.factories[id]
	if !ok {
		return nil
	}
	return factory()
}

func (r *ServiceRegistry) IDs() []string {
	if r == nil {
		return nil
	}
	var ids []string
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type AppIDSource int

const (
	// FromInstaller reads a root-level installer field
	FromInstaller AppIDSource = iota
	// FromGameSection reads a key of the script's `game` section
	FromGameSection
)

type AppIDField struct {
	Source AppIDSource
	Key    string
}

// A ServiceKind describes how scripts refer to a provider
type ServiceKind struct {
	ID string
	// RunnerKeyword binds the provider when found in the runner name
	RunnerKeyword string
	// VersionKeyword binds the provider when found in the version, case-insensitively
	VersionKeyword string
	// AppIDFields are tried in order, before the generic service_id
	AppIDFields []AppIDField
	// NativeManifest is set for providers that drop a launch manifest
	// in the install folder.
	NativeManifest bool
}

var ServiceKinds = []ServiceKind{
	{
		ID:            ServiceSteam,
		RunnerKeyword: "steam",
		AppIDFields: []AppIDField{
			{Source: FromInstaller, Key: "steamid"},
		},
	},
	{
		ID:             ServiceHumbleBundle,
		VersionKeyword: "humble",
		AppIDFields: []AppIDField{
			{Source: FromGameSection, Key: "humbleid"},
			{Source: FromInstaller, Key: "humblestoreid"},
		},
	},
	{
		ID:             ServiceGOG,
		VersionKeyword: "gog",
		AppIDFields: []AppIDField{
			{Source: FromGameSection, Key: "gogid"},
			{Source: FromInstaller, Key: "gogid"},
		},
		NativeManifest: true,
	},
}

// KindOf returns the kind of a provider. Unknown providers get an
// empty kind, which only knows about service_id.
func KindOf(serviceID string) ServiceKind {
	for _, kind := range ServiceKinds {
		if kind.ID == serviceID {
			return kind
		}
	}
	return ServiceKind{ID: serviceID}
}

func (k ServiceKind) matchesRunner(runner string) bool {
	return k.RunnerKeyword != "" && strings.Contains(runner, k.RunnerKeyword)
}

func (k ServiceKind) matchesVersion(version string) bool {
	return k.VersionKeyword != "" && strings.Contains(strings.ToLower(version), k.VersionKeyword)
}
