package configurator

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/itchio/ox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPE returns the smallest 32-bit PE image debug/pe accepts
func minimalPE(t *testing.T, subsystem uint16) []byte {
	var buf bytes.Buffer
	dos := make([]byte, 64)
	dos[0], dos[1] = 'M', 'Z'
	binary.LittleEndian.PutUint32(dos[0x3c:], 64)
	buf.Write(dos)
	buf.WriteString("PE\x00\x00")

	oh := pe.OptionalHeader32{
		Magic:               0x10b,
		Subsystem:           subsystem,
		NumberOfRvaAndSizes: 16,
	}
	fh := pe.FileHeader{
		Machine:              pe.IMAGE_FILE_MACHINE_I386,
		SizeOfOptionalHeader: uint16(binary.Size(oh)),
		Characteristics:      0x0102,
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, fh))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, oh))
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, contents []byte, mode os.FileMode) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, ioutil.WriteFile(path, contents, mode))
}

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "installkit-configurator")
	require.NoError(t, err)
	return dir
}

func Test_SniffPE(t *testing.T) {
	gui := minimalPE(t, pe.IMAGE_SUBSYSTEM_WINDOWS_GUI)
	c, err := Sniff(bytes.NewReader(gui), "Game/game.exe", int64(len(gui)))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.EqualValues(t, FlavorNativeWindows, c.Flavor)
	assert.EqualValues(t, Arch386, c.Arch)
	assert.True(t, c.WindowsInfo.Gui)

	c, err = Sniff(bytes.NewReader(gui), "Game/unins000.exe", int64(len(gui)))
	require.NoError(t, err)
	assert.True(t, c.WindowsInfo.Uninstaller)

	// not actually a PE
	notPE := []byte("hello there, not an exe")
	c, err = Sniff(bytes.NewReader(notPE), "fake.exe", int64(len(notPE)))
	require.NoError(t, err)
	assert.Nil(t, c)
}

func Test_SniffELF(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("needs an ELF binary")
	}

	self, err := os.Executable()
	require.NoError(t, err)
	f, err := os.Open(self)
	require.NoError(t, err)
	defer f.Close()
	stats, err := f.Stat()
	require.NoError(t, err)

	c, err := Sniff(f, "game.x86_64", stats.Size())
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.EqualValues(t, FlavorNativeLinux, c.Flavor)
}

func Test_FindLinuxExecutable(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	writeFile(t, filepath.Join(dir, "start.sh"), []byte("#!/bin/sh\nexec ./game.bin\n"), 0644)
	writeFile(t, filepath.Join(dir, "README.txt"), []byte("have fun with the game"), 0644)
	writeFile(t, filepath.Join(dir, "support", "uninstall.sh"), []byte("#!/bin/bash\nrm -rf .\n"), 0644)
	writeFile(t, filepath.Join(dir, ".git", "hooks", "pre-commit"), []byte("#!/bin/sh\nexit 0\n"), 0644)

	f := &Finder{Runtime: &ox.Runtime{Platform: ox.PlatformLinux, Is64: true}}
	exe, err := f.FindLinuxExecutable(dir, true)
	require.NoError(t, err)
	assert.EqualValues(t, filepath.Join(dir, "start.sh"), exe)

	stats, err := os.Stat(exe)
	require.NoError(t, err)
	assert.NotZero(t, stats.Mode()&0100, "start.sh was made executable")
}

func Test_FindLinuxExecutableNone(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	writeFile(t, filepath.Join(dir, "data.pak"), []byte("not an executable at all"), 0644)

	f := &Finder{}
	_, err := f.FindLinuxExecutable(dir, false)
	assert.Error(t, err)
}

func Test_FindWindowsExecutable(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	gui := minimalPE(t, pe.IMAGE_SUBSYSTEM_WINDOWS_GUI)
	console := minimalPE(t, pe.IMAGE_SUBSYSTEM_WINDOWS_CUI)

	writeFile(t, filepath.Join(dir, "drive_c", "windows", "notepad.exe"), gui, 0644)
	writeFile(t, filepath.Join(dir, "drive_c", "GOG Games", "Game", "game.exe"), gui, 0644)
	writeFile(t, filepath.Join(dir, "drive_c", "GOG Games", "Game", "tool.exe"), console, 0644)
	writeFile(t, filepath.Join(dir, "drive_c", "GOG Games", "Game", "unins000.exe"), gui, 0644)
	writeFile(t, filepath.Join(dir, "drive_c", "GOG Games", "Game", "setup_game.exe"), gui, 0644)

	f := &Finder{Runtime: &ox.Runtime{Platform: ox.PlatformLinux, Is64: true}}
	exe, err := f.FindWindowsExecutable(dir)
	require.NoError(t, err)
	assert.EqualValues(t, filepath.Join(dir, "drive_c", "GOG Games", "Game", "game.exe"), exe)
}

func Test_FilterPlatformDepthAmongCompatible(t *testing.T) {
	v := &Verdict{
		Candidates: []*Candidate{
			{Path: "setup.exe", Depth: 1, Flavor: FlavorNativeWindows, WindowsInfo: &WindowsInfo{}},
			{Path: "game/run.sh", Depth: 2, Flavor: FlavorScript},
			{Path: "game/bin/game", Depth: 3, Flavor: FlavorNativeLinux, Arch: ArchAmd64},
		},
	}
	v.FilterPlatform("linux", "amd64")
	require.Len(t, v.Candidates, 1)
	assert.EqualValues(t, "game/run.sh", v.Candidates[0].Path)
}

func Test_FilterPlatformBlacklist(t *testing.T) {
	v := &Verdict{
		Candidates: []*Candidate{
			{Path: "game", Depth: 1, Flavor: FlavorNativeLinux, Arch: ArchAmd64, Size: 10},
			{Path: "libsteam_api.so", Depth: 1, Flavor: FlavorNativeLinux, Arch: ArchAmd64, Size: 1000},
			{Path: "nacl_helper", Depth: 1, Flavor: FlavorNativeLinux, Arch: ArchAmd64, Size: 100},
		},
	}
	v.FilterPlatform("linux", "amd64")
	require.Len(t, v.Candidates, 2)
	assert.EqualValues(t, "game", v.Candidates[0].Path)
	assert.EqualValues(t, "nacl_helper", v.Candidates[1].Path)
}
