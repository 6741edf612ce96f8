package installer

import (
	"path"
	"strings"
)

const (
	// UserProvidedURLPrefix marks files the user has to pick on disk
	UserProvidedURLPrefix = "N/A"
	// ProviderInstallerURL is the URL of the placeholder planned when
	// a provider couldn't hand us its installer.
	ProviderInstallerURL = "N/A: Provider installer file"

	// AutoELFExe asks for the main Linux executable to be auto-detected
	AutoELFExe = "_xXx_AUTO_ELF_xXx_"
	// AutoWin32Exe asks for the main Windows executable to be auto-detected
	AutoWin32Exe = "_xXx_AUTO_WIN32_xXx_"
)

// An InstallerFile is something that has to be on disk before the
// script steps can run.
type InstallerFile struct {
	GameSlug string `json:"gameSlug"`
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Referer  string `json:"referer,omitempty"`
	Checksum string `json:"checksum,omitempty"`
}

// WithURL returns a copy of the file pointing to another URL
func (f *InstallerFile) WithURL(url string) *InstallerFile {
	res := f.Copy()
	res.URL = url
	return res
}

func (f *InstallerFile) Copy() *InstallerFile {
	res := *f
	return &res
}

// IsUserProvided returns true if the user has to supply the file
func (f *InstallerFile) IsUserProvided() bool {
	return strings.HasPrefix(f.URL, UserProvidedURLPrefix)
}

// parseFiles reads the `files` list of a script. Each entry is a
// single-key mapping from file id to either a URL or a mapping.
func parseFiles(gameSlug string, raw interface{}) ([]*InstallerFile, error) {
	if raw == nil {
		return nil, nil
	}

	entries, ok := raw.([]interface{})
	if !ok {
		return nil, scriptingError("Invalid 'files' section", raw)
	}

	var files []*InstallerFile
	for _, entry := range entries {
		m, err := toStringMap(entry)
		if err != nil {
			return nil, err
		}

		for id, value := range m {
			f := &InstallerFile{
				GameSlug: gameSlug,
				ID:       id,
			}

			switch tv := value.(type) {
			case map[string]interface{}, map[interface{}]interface{}:
				fields, err := toStringMap(tv)
				if err != nil {
					return nil, err
				}
				f.URL = stringify(fields["url"])
				f.Filename = stringify(fields["filename"])
				f.Referer = stringify(fields["referer"])
				f.Checksum = stringify(fields["checksum"])
			default:
				f.URL = stringify(tv)
			}

			if f.Filename == "" && !f.IsUserProvided() {
				f.Filename = URLBasename(f.URL)
			}
			files = append(files, f)
		}
	}
	return files, nil
}

// URLBasename is the last path element of url, without query or fragment
func URLBasename(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	base := path.Base(url)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
