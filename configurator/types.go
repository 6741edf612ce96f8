package configurator

import "encoding/json"

type Verdict struct {
	BasePath   string       `json:"basePath"`
	TotalSize  int64        `json:"totalSize"`
	Candidates []*Candidate `json:"candidates"`
}

func (v *Verdict) String() string {
	marshalled, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}

	return string(marshalled)
}

// Candidate indicates what's interesting about a file
type Candidate struct {
	// Path is relative to the verdict's base path, slash-separated
	Path        string       `json:"path"`
	Mode        uint32       `json:"mode,omitempty"`
	Depth       int          `json:"depth"`
	Flavor      Flavor       `json:"flavor"`
	Arch        Arch         `json:"arch,omitempty"`
	Size        int64        `json:"size"`
	WindowsInfo *WindowsInfo `json:"windowsInfo,omitempty"`
	ScriptInfo  *ScriptInfo  `json:"scriptInfo,omitempty"`
	JarInfo     *JarInfo     `json:"jarInfo,omitempty"`
}

// Flavor describes the flavor of an executable
type Flavor string

const (
	// FlavorNativeLinux denotes native linux executables
	FlavorNativeLinux Flavor = "linux"
	// FlavorNativeMacos denotes native macOS executables
	FlavorNativeMacos Flavor = "macos"
	// FlavorNativeWindows denotes native windows executables
	FlavorNativeWindows Flavor = "windows"
	// FlavorScript denotes scripts starting with a shebang (#!)
	FlavorScript Flavor = "script"
	// FlavorScriptWindows denotes windows scripts (.bat or .cmd)
	FlavorScriptWindows Flavor = "windows-script"
	// FlavorJar denotes a .jar archive with a Main-Class
	FlavorJar Flavor = "jar"
	// FlavorHTML denotes an index html file
	FlavorHTML Flavor = "html"
)

type Arch string

const (
	Arch386   Arch = "386"
	ArchAmd64 Arch = "amd64"
)

type WindowsInfo struct {
	InstallerType WindowsInstallerType `json:"installerType,omitempty"`
	Uninstaller   bool                 `json:"uninstaller,omitempty"`
	Gui           bool                 `json:"gui,omitempty"`
	DotNet        bool                 `json:"dotNet,omitempty"`
}

type WindowsInstallerType string

const (
	WindowsInstallerTypeMsi WindowsInstallerType = "msi"
	// setup executables we only know by name
	WindowsInstallerTypeSetup WindowsInstallerType = "setup"
)

type ScriptInfo struct {
	Interpreter string `json:"interpreter,omitempty"`
}

type JarInfo struct {
	MainClass string `json:"mainClass,omitempty"`
}
