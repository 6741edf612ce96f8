// Package mirror serves installer files from a local catalog, for
// machines that keep their own copy of a store's downloads.
package mirror

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/itchio/wharf/state"
	"github.com/lutris/installkit/installer"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Catalog is the on-disk format, keyed by app id (or game slug):
//
//	[games.1207658924]
//	slug = "unreal-gold"
//
//	[[games.1207658924.files]]
//	url = "https://mirror.example.org/setup_unreal_gold.exe"
//	checksum = "md5:..."
//
//	[[games.1207658924.extras]]
//	name = "manual"
//	url = "https://mirror.example.org/manual.pdf"
//
//	[[games.1207658924.patches]]
//	version = "2.26"
//	url = "https://mirror.example.org/patch_226.exe"
type Catalog struct {
	Games map[string]*Game `mapstructure:"games"`
}

type Game struct {
	Slug    string   `mapstructure:"slug"`
	Files   []*Entry `mapstructure:"files"`
	Extras  []*Entry `mapstructure:"extras"`
	Patches []*Entry `mapstructure:"patches"`
}

type Entry struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	URL      string `mapstructure:"url"`
	Filename string `mapstructure:"filename"`
	Referer  string `mapstructure:"referer"`
	Checksum string `mapstructure:"checksum"`
}

// ReadCatalog parses a catalog file
func ReadCatalog(catalogPath string) (*Catalog, error) {
	f, err := os.Open(catalogPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	intermediate := make(map[string]interface{})
	_, err = toml.DecodeReader(f, &intermediate)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", catalogPath)
	}

	c := &Catalog{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
	})
	if err != nil {
		// internal error
		return nil, errors.WithStack(err)
	}

	err = decoder.Decode(intermediate)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid catalog %s", catalogPath)
	}
	if c.Games == nil {
		c.Games = make(map[string]*Game)
	}
	return c, nil
}

// Service implements installer.Service over a catalog
type Service struct {
	id       string
	catalog  *Catalog
	consumer *state.Consumer
}

var _ installer.Service = (*Service)(nil)

func New(id string, catalog *Catalog, consumer *state.Consumer) *Service {
	if consumer == nil {
		consumer = &state.Consumer{}
	}
	return &Service{
		id:       id,
		catalog:  catalog,
		consumer: consumer,
	}
}

// Factory reads the catalog once and returns a factory suitable for
// installer.ServiceRegistry.Register
func Factory(id string, catalogPath string, consumer *state.Consumer) (installer.ServiceFactory, error) {
	catalog, err := ReadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	return func() installer.Service {
		return New(id, catalog, consumer)
	}, nil
}

func (s *Service) ID() string {
	return s.id
}

// Online is false: a mirror never needs a session
func (s *Service) Online() bool {
	return false
}

func (s *Service) IsConnected() bool {
	return true
}

func (s *Service) HasExtras() bool {
	return true
}

func (s *Service) lookup(req *installer.ServiceRequest) *Game {
	if req == nil {
		return nil
	}
	if req.AppID != "" {
		if g, ok := s.catalog.Games[req.AppID]; ok {
			return g
		}
	}
	for _, g := range s.catalog.Games {
		if g.Slug != "" && g.Slug == req.GameSlug {
			return g
		}
	}
	return nil
}

// GetInstallerFiles returns the installer parts under fileID, then the
// selected extras under their own names. Unknown games yield nothing.
func (s *Service) GetInstallerFiles(ctx context.Context, req *installer.ServiceRequest, fileID string, extras []string) ([]*installer.InstallerFile, error) {
	g := s.lookup(req)
	if g == nil {
		s.consumer.Debugf("%s: no catalog entry for %s", s.id, req.AppID)
		return nil, nil
	}

	var res []*installer.InstallerFile
	for i, e := range g.Files {
		id := fileID
		if i > 0 {
			id = fmt.Sprintf("%s_part%d", fileID, i+1)
		}
		res = append(res, e.toFile(req.GameSlug, id))
	}

	if len(extras) > 0 {
		selected := make(map[string]bool)
		for _, name := range extras {
			selected[name] = true
		}
		for _, e := range g.Extras {
			if selected[e.Name] {
				res = append(res, e.toFile(req.GameSlug, e.Name))
			}
		}
	}
	return res, nil
}

// GetPatchFiles returns the patches for the requested patch version
func (s *Service) GetPatchFiles(ctx context.Context, req *installer.ServiceRequest, fileID string) ([]*installer.InstallerFile, error) {
	g := s.lookup(req)
	if g == nil {
		s.consumer.Debugf("%s: no catalog entry for %s", s.id, req.AppID)
		return nil, nil
	}

	var res []*installer.InstallerFile
	for _, e := range g.Patches {
		if e.Version != req.PatchVersion {
			continue
		}
		res = append(res, e.toFile(req.GameSlug, fileID))
	}
	return res, nil
}

func (e *Entry) toFile(gameSlug string, id string) *installer.InstallerFile {
	f := &installer.InstallerFile{
		GameSlug: gameSlug,
		ID:       id,
		URL:      e.URL,
		Filename: e.Filename,
		Referer:  e.Referer,
		Checksum: e.Checksum,
	}
	if f.Filename == "" {
		f.Filename = installer.URLBasename(e.URL)
	}
	return f
}
