package configurator

import (
	"archive/zip"
	"bufio"
	"debug/elf"
	"debug/pe"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/itchio/wharf/state"
	"github.com/lutris/installkit/filtering"
	"github.com/pkg/errors"
)

// dataDirectoryCLR is the index of the CLR runtime header, only
// present in .NET assemblies
const dataDirectoryCLR = 14

var setupPattern = regexp.MustCompile(`(?i)(^|[/_-])(setup|install|installer)[^/]*\.exe$`)
var uninstallerPattern = regexp.MustCompile(`(?i)unins[^/]*\.exe$`)

func sniffPE(r io.ReaderAt, path string) (*Candidate, error) {
	f, err := pe.NewFile(r)
	if err != nil {
		// not a PE file after all
		return nil, nil
	}
	defer f.Close()

	result := &Candidate{
		Flavor:      FlavorNativeWindows,
		WindowsInfo: &WindowsInfo{},
	}

	switch f.FileHeader.Machine {
	case pe.IMAGE_FILE_MACHINE_I386:
		result.Arch = Arch386
	case pe.IMAGE_FILE_MACHINE_AMD64:
		result.Arch = ArchAmd64
	}

	var subsystem uint16
	var clr pe.DataDirectory
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		subsystem = oh.Subsystem
		if len(oh.DataDirectory) > dataDirectoryCLR {
			clr = oh.DataDirectory[dataDirectoryCLR]
		}
	case *pe.OptionalHeader64:
		subsystem = oh.Subsystem
		if len(oh.DataDirectory) > dataDirectoryCLR {
			clr = oh.DataDirectory[dataDirectoryCLR]
		}
	}

	if subsystem == pe.IMAGE_SUBSYSTEM_WINDOWS_GUI {
		result.WindowsInfo.Gui = true
	}
	if clr.VirtualAddress != 0 {
		result.WindowsInfo.DotNet = true
	}

	if uninstallerPattern.MatchString(path) {
		result.WindowsInfo.Uninstaller = true
	} else if setupPattern.MatchString(path) {
		result.WindowsInfo.InstallerType = WindowsInstallerTypeSetup
	}

	return result, nil
}

func sniffELF(r io.ReaderAt) (*Candidate, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	// some executables are marked as shared objects (PIE binaries
	// for example), so both types are considered.
	if f.Type != elf.ET_EXEC && f.Type != elf.ET_DYN {
		return nil, nil
	}

	result := &Candidate{
		Flavor: FlavorNativeLinux,
	}

	switch f.Class {
	case elf.ELFCLASS32:
		result.Arch = Arch386
	case elf.ELFCLASS64:
		result.Arch = ArchAmd64
	}

	return result, nil
}

func sniffScript(r io.ReadSeeker) (*Candidate, error) {
	res := &Candidate{
		Flavor:     FlavorScript,
		ScriptInfo: &ScriptInfo{},
	}

	_, err := r.Seek(0, io.SeekStart)
	if err != nil {
		return nil, err
	}

	s := bufio.NewScanner(r)

	if s.Scan() {
		line := s.Text()
		if len(line) > 2 {
			// skip over the shebang
			res.ScriptInfo.Interpreter = strings.TrimSpace(line[2:])
		}
	}

	return res, nil
}

func sniffZip(r io.ReaderAt, size int64) (*Candidate, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		// not a zip, probably
		return nil, nil
	}

	for _, f := range zr.File {
		path := filepath.ToSlash(filepath.Clean(filepath.ToSlash(f.Name)))
		if path != "META-INF/MANIFEST.MF" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, nil
		}
		defer rc.Close()

		s := bufio.NewScanner(rc)
		for s.Scan() {
			tokens := strings.SplitN(s.Text(), ":", 2)
			if len(tokens) == 2 && tokens[0] == "Main-Class" {
				return &Candidate{
					Flavor: FlavorJar,
					JarInfo: &JarInfo{
						MainClass: strings.TrimSpace(tokens[1]),
					},
				}, nil
			}
		}
		break
	}

	return nil, nil
}

// Sniff looks at a file's name and first bytes and returns a candidate
// if it looks like something that can be launched, nil otherwise.
func Sniff(r io.ReadSeeker, path string, size int64) (*Candidate, error) {
	var ra io.ReaderAt
	if readerAt, ok := r.(io.ReaderAt); ok {
		ra = readerAt
	} else {
		ra = &readerAtFromSeeker{r}
	}
	lowerPath := strings.ToLower(path)

	if filepath.Base(lowerPath) == "index.html" {
		return &Candidate{
			Flavor: FlavorHTML,
			Path:   path,
		}, nil
	}

	// if it ends in .exe, it's probably an .exe
	if strings.HasSuffix(lowerPath, ".exe") {
		subRes, subErr := sniffPE(ra, path)
		if subErr != nil {
			return nil, errors.WithStack(subErr)
		}
		if subRes != nil {
			return subRes, nil
		}
		// it wasn't an exe, carry on...
	}

	// if it ends in .bat or .cmd, it's a windows script
	if strings.HasSuffix(lowerPath, ".bat") || strings.HasSuffix(lowerPath, ".cmd") {
		return &Candidate{
			Flavor: FlavorScriptWindows,
		}, nil
	}

	_, err := r.Seek(0, io.SeekStart)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	buf := make([]byte, 8)
	n, _ := io.ReadFull(r, buf)
	if n < len(buf) {
		// too short to be an exec or unreadable
		return nil, nil
	}

	// intel Mach-O executables start with 0xCEFAEDFE or 0xCFFAEDFE
	if (buf[0] == 0xCE || buf[0] == 0xCF) && buf[1] == 0xFA && buf[2] == 0xED && buf[3] == 0xFE {
		return &Candidate{
			Flavor: FlavorNativeMacos,
		}, nil
	}

	// ELF executables start with 0x7F + 'ELF' in ASCII
	if buf[0] == 0x7F && buf[1] == 0x45 && buf[2] == 0x4C && buf[3] == 0x46 {
		return sniffELF(ra)
	}

	// Shell scripts start with a shebang (#!)
	if buf[0] == 0x23 && buf[1] == 0x21 {
		return sniffScript(r)
	}

	// MSI (Microsoft Installer Packages) have a well-defined magic number.
	if buf[0] == 0xD0 && buf[1] == 0xCF &&
		buf[2] == 0x11 && buf[3] == 0xE0 &&
		buf[4] == 0xA1 && buf[5] == 0xB1 &&
		buf[6] == 0x1A && buf[7] == 0xE1 {
		return &Candidate{
			Flavor: FlavorNativeWindows,
			WindowsInfo: &WindowsInfo{
				InstallerType: WindowsInstallerTypeMsi,
			},
		}, nil
	}

	if buf[0] == 0x50 && buf[1] == 0x4B &&
		buf[2] == 0x03 && buf[3] == 0x04 {
		return sniffZip(ra, size)
	}

	return nil, nil
}

func pathToDepth(path string) int {
	return len(strings.Split(path, "/"))
}

// Configure walks root and sniffs every file it finds. Unreadable
// files are skipped. filter may be nil.
func Configure(root string, filter filtering.Filter) (*Verdict, error) {
	verdict := &Verdict{
		BasePath: root,
	}
	if filter == nil {
		filter = filtering.FilterPaths
	}

	var candidates = make([]*Candidate, 0)

	err := filepath.Walk(root, func(fullPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fullPath == root {
			return nil
		}

		rel, err := filepath.Rel(root, fullPath)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !filter(rel, info) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}
		verdict.TotalSize += info.Size()

		f, err := os.Open(fullPath)
		if err != nil {
			// permission problems etc.
			return nil
		}
		defer f.Close()

		res, err := Sniff(f, rel, info.Size())
		if err != nil {
			return errors.Wrapf(err, "sniffing %s", rel)
		}

		if res != nil {
			res.Size = info.Size()
			if res.Path == "" {
				res.Path = rel
			}
			res.Mode = uint32(info.Mode())
			res.Depth = pathToDepth(res.Path)
			candidates = append(candidates, res)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}

	verdict.Candidates = candidates
	return verdict, nil
}

// Adapt an io.ReadSeeker into an io.ReaderAt in the dumbest possible fashion

type readerAtFromSeeker struct {
	rs io.ReadSeeker
}

var _ io.ReaderAt = (*readerAtFromSeeker)(nil)

func (r *readerAtFromSeeker) ReadAt(b []byte, off int64) (int, error) {
	_, err := r.rs.Seek(off, io.SeekStart)
	if err != nil {
		return 0, err
	}

	n, err := io.ReadFull(r.rs, b)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}

func SelectByFlavor(candidates []*Candidate, f Flavor) []*Candidate {
	return SelectByFunc(candidates, func(c *Candidate) bool {
		return c.Flavor == f
	})
}

func SelectByArch(candidates []*Candidate, a Arch) []*Candidate {
	return SelectByFunc(candidates, func(c *Candidate) bool {
		return c.Arch == a
	})
}

type CandidateFilter func(candidate *Candidate) bool

func SelectByFunc(candidates []*Candidate, f CandidateFilter) []*Candidate {
	res := make([]*Candidate, 0)
	for _, c := range candidates {
		if f(c) {
			res = append(res, c)
		}
	}
	return res
}

// FixPermissions makes linux executables and scripts executable
func (v *Verdict) FixPermissions(consumer *state.Consumer, dryrun bool) ([]string, error) {
	var fixed []string

	for _, c := range v.Candidates {
		switch c.Flavor {
		case FlavorNativeLinux, FlavorNativeMacos, FlavorScript:
			fullPath := filepath.Join(v.BasePath, filepath.FromSlash(c.Path))

			if c.Mode&0100 == 0 {
				consumer.Infof("Fixing permissions for %s", c.Path)

				fixed = append(fixed, c.Path)
				if !dryrun {
					err := os.Chmod(fullPath, 0755)
					if err != nil {
						return nil, errors.WithStack(err)
					}
					c.Mode |= 0755
				}
			}
		}
	}

	return fixed, nil
}

type BiggestFirst struct {
	candidates []*Candidate
}

var _ sort.Interface = (*BiggestFirst)(nil)

func (bf *BiggestFirst) Len() int {
	return len(bf.candidates)
}

func (bf *BiggestFirst) Less(i, j int) bool {
	return bf.candidates[i].Size > bf.candidates[j].Size
}

func (bf *BiggestFirst) Swap(i, j int) {
	bf.candidates[i], bf.candidates[j] = bf.candidates[j], bf.candidates[i]
}

type HighestScoreFirst struct {
	candidates []ScoredCandidate
}

var _ sort.Interface = (*HighestScoreFirst)(nil)

func (hsf *HighestScoreFirst) Len() int {
	return len(hsf.candidates)
}

func (hsf *HighestScoreFirst) Less(i, j int) bool {
	return hsf.candidates[i].score > hsf.candidates[j].score
}

func (hsf *HighestScoreFirst) Swap(i, j int) {
	hsf.candidates[i], hsf.candidates[j] = hsf.candidates[j], hsf.candidates[i]
}

type BlacklistEntry struct {
	pattern *regexp.Regexp
	penalty Penalty
}

type PenaltyKind int

const (
	PenaltyExclude PenaltyKind = iota
	PenaltyScore
)

type Penalty struct {
	kind  PenaltyKind
	delta int64
}

var blacklist = []BlacklistEntry{
	{regexp.MustCompile(`(?i)unins.*\.exe$`), Penalty{PenaltyScore, 50}},
	{regexp.MustCompile(`(?i)kick\.bin$`), Penalty{PenaltyScore, 50}},
	{regexp.MustCompile(`(?i)\.vshost\.exe$`), Penalty{PenaltyScore, 50}},
	{regexp.MustCompile(`(?i)nacl_helper`), Penalty{PenaltyScore, 20}},
	{regexp.MustCompile(`(?i)nwjc\.exe$`), Penalty{PenaltyScore, 20}},
	{regexp.MustCompile(`(?i)flixel\.exe$`), Penalty{PenaltyScore, 20}},
	{regexp.MustCompile(`(?i)crashpad_handler`), Penalty{PenaltyScore, 40}},
	{regexp.MustCompile(`(?i)UnityCrashHandler`), Penalty{PenaltyScore, 40}},
	{regexp.MustCompile(`(?i)\.(so|dylib|dll)(\.[0-9]+)*$`), Penalty{PenaltyExclude, 0}},
	{regexp.MustCompile(`(?i)dxwebsetup\.exe$`), Penalty{PenaltyExclude, 0}},
	{regexp.MustCompile(`(?i)vcredist.*\.exe$`), Penalty{PenaltyExclude, 0}},
	{regexp.MustCompile(`(?i)dotnetfx.*\.exe$`), Penalty{PenaltyExclude, 0}},
}

type ScoredCandidate struct {
	candidate *Candidate
	score     int64
}

// Score starts at 100 and loses points for every blacklist entry the
// candidate's path matches. Excluded candidates score 0.
func Score(candidate *Candidate) int64 {
	var score int64 = 100
	for _, entry := range blacklist {
		if entry.pattern.MatchString(candidate.Path) {
			switch entry.penalty.kind {
			case PenaltyScore:
				score -= entry.penalty.delta
			case PenaltyExclude:
				return 0
			}
		}
	}
	return score
}

// FilterPlatform narrows the candidates down to the ones that run on
// the given os/arch (GOOS/GOARCH notation), best first.
func (v *Verdict) FilterPlatform(osFilter string, archFilter string) {
	compatibleCandidates := make([]*Candidate, 0)

	// exclude things we can't run at all
	for _, c := range v.Candidates {
		keep := true

		switch c.Flavor {
		case FlavorNativeLinux:
			if osFilter != "linux" {
				keep = false
			}

			if archFilter == "386" && c.Arch != Arch386 {
				keep = false
			}
		case FlavorNativeWindows:
			if osFilter != "windows" {
				keep = false
			}
		case FlavorNativeMacos:
			if osFilter != "darwin" {
				keep = false
			}
		}

		if keep {
			compatibleCandidates = append(compatibleCandidates, c)
		}
	}

	bestCandidates := compatibleCandidates

	if len(bestCandidates) <= 1 {
		v.Candidates = bestCandidates
		return
	}

	// now keep all candidates of the lowest depth
	lowestDepth := 4096
	for _, c := range compatibleCandidates {
		if c.Depth < lowestDepth {
			lowestDepth = c.Depth
		}
	}

	bestCandidates = SelectByFunc(compatibleCandidates, func(c *Candidate) bool {
		return c.Depth == lowestDepth
	})

	if len(bestCandidates) == 1 {
		v.Candidates = bestCandidates
		return
	}

	// on windows, scripts win
	if osFilter == "windows" {
		scriptCandidates := SelectByFlavor(bestCandidates, FlavorScriptWindows)

		if len(scriptCandidates) == 1 {
			v.Candidates = scriptCandidates
			return
		}
	}

	// on linux, scripts win
	if osFilter == "linux" {
		scriptCandidates := SelectByFlavor(bestCandidates, FlavorScript)

		if len(scriptCandidates) == 1 {
			v.Candidates = scriptCandidates
			return
		}
	}

	if osFilter == "linux" && archFilter == "amd64" {
		linuxCandidates := SelectByFlavor(bestCandidates, FlavorNativeLinux)
		linux64Candidates := SelectByArch(linuxCandidates, ArchAmd64)

		if len(linux64Candidates) > 0 {
			// on linux 64, 64-bit binaries win
			bestCandidates = linux64Candidates
		} else {
			// if no 64-bit binaries, jars win
			jarCandidates := SelectByFlavor(bestCandidates, FlavorJar)
			if len(jarCandidates) > 0 {
				v.Candidates = jarCandidates
				return
			}
		}

		if len(bestCandidates) == 1 {
			v.Candidates = bestCandidates
			return
		}
	}

	// on windows, non-installers win
	if osFilter == "windows" {
		windowsCandidates := SelectByFlavor(bestCandidates, FlavorNativeWindows)
		nonInstallerCandidates := SelectByFunc(windowsCandidates, func(c *Candidate) bool {
			return !(c.WindowsInfo != nil && (c.WindowsInfo.InstallerType != "" || c.WindowsInfo.Uninstaller))
		})

		if len(nonInstallerCandidates) > 0 {
			bestCandidates = nonInstallerCandidates
		}

		if len(bestCandidates) == 1 {
			v.Candidates = bestCandidates
			return
		}
	}

	// on windows, gui executables win
	if osFilter == "windows" {
		windowsCandidates := SelectByFlavor(bestCandidates, FlavorNativeWindows)
		guiCandidates := SelectByFunc(windowsCandidates, func(c *Candidate) bool {
			return c.WindowsInfo != nil && c.WindowsInfo.Gui
		})

		if len(guiCandidates) > 0 {
			bestCandidates = guiCandidates
		}

		if len(bestCandidates) == 1 {
			v.Candidates = bestCandidates
			return
		}
	}

	// everywhere, HTMLs lose if there's anything else good
	{
		htmlCandidates := SelectByFlavor(bestCandidates, FlavorHTML)
		if len(htmlCandidates) > 0 && len(htmlCandidates) < len(bestCandidates) {
			bestCandidates = SelectByFunc(bestCandidates, func(c *Candidate) bool {
				return c.Flavor != FlavorHTML
			})
		}
	}

	// everywhere, jars lose if there's anything else good
	{
		jarCandidates := SelectByFlavor(bestCandidates, FlavorJar)
		if len(jarCandidates) > 0 && len(jarCandidates) < len(bestCandidates) {
			bestCandidates = SelectByFunc(bestCandidates, func(c *Candidate) bool {
				return c.Flavor != FlavorJar
			})
		}
	}

	// sort by biggest first
	sort.Stable(&BiggestFirst{bestCandidates})

	// score, filter & sort
	var scoredCandidates []ScoredCandidate
	for _, candidate := range bestCandidates {
		scored := ScoredCandidate{candidate, Score(candidate)}
		if scored.score > 0 {
			scoredCandidates = append(scoredCandidates, scored)
		}
	}
	sort.Stable(&HighestScoreFirst{scoredCandidates})

	var finalCandidates []*Candidate
	for _, scored := range scoredCandidates {
		finalCandidates = append(finalCandidates, scored.candidate)
	}

	v.Candidates = finalCandidates
}
