package installer

import (
	"context"

	"github.com/lutris/installkit/database/models"
)

// Interpreter substitutes $VARIABLES in script values, and knows
// where the game is being installed.
type Interpreter interface {
	Substitute(value string) string
	TargetPath() string
	// Extras lists the bonus content the user selected, if any
	Extras() []string
}

// GameStore holds install records
type GameStore interface {
	// GameByField returns nil, nil when no record matches
	GameByField(value string, field string) (*models.Game, error)
	AddOrUpdate(game *models.Game) (int64, error)
}

// ConfigStore holds persisted game configs
type ConfigStore interface {
	LoadGameConfig(runner string, configID string) (map[string]interface{}, error)
	// WriteGameConfig returns the config id it stored the config under
	WriteGameConfig(slug string, config map[string]interface{}) (string, error)
}

type RunnerRegistry interface {
	PlatformOf(runner string) (string, error)
}

type ExecutableFinder interface {
	FindLinuxExecutable(targetPath string, makeExecutable bool) (string, error)
	FindWindowsExecutable(targetPath string) (string, error)
}

// NativeConfigAdapter reads the launch manifest some providers drop
// next to the game files, and turns it into a game section.
type NativeConfigAdapter interface {
	HasNativeManifest(targetPath string) bool
	ReadNativeManifest(targetPath string) (interface{}, error)
	NativeInstallDir(targetPath string) (string, error)
	ToLutrisConfig(manifest interface{}, installDir string) (map[string]interface{}, error)
}

// URLRewriter turns download pages into direct links
type URLRewriter interface {
	Matches(url string) bool
	Rewrite(ctx context.Context, url string) (string, error)
}

// ServiceRequest describes what we're asking a provider for
type ServiceRequest struct {
	GameSlug string
	Slug     string
	AppID    string
	Runner   string
	// Version is the script's version label ("GOG", "Steam"...)
	Version string
	// PatchVersion is set when asking for a patch instead of the installer
	PatchVersion string
}

// Service is an acquisition provider (a store, a mirror...)
type Service interface {
	ID() string
	// Online services need an authenticated session
	Online() bool
	IsConnected() bool
	HasExtras() bool
	GetInstallerFiles(ctx context.Context, req *ServiceRequest, fileID string, extras []string) ([]*InstallerFile, error)
	GetPatchFiles(ctx context.Context, req *ServiceRequest, fileID string) ([]*InstallerFile, error)
}
