package mirror

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lutris/installkit/database/models"
	"github.com/lutris/installkit/installer"
	"github.com/lutris/installkit/interpreter"
	"github.com/lutris/installkit/runners"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
[games.1207658924]
slug = "unreal-gold"

[[games.1207658924.files]]
url = "https://mirror.example.org/setup_unreal_gold.exe"
checksum = "md5:d41d8cd98f00b204e9800998ecf8427e"

[[games.1207658924.files]]
url = "https://mirror.example.org/setup_unreal_gold-1.bin"

[[games.1207658924.extras]]
name = "manual"
url = "https://mirror.example.org/manual.pdf"

[[games.1207658924.extras]]
name = "soundtrack"
url = "https://mirror.example.org/ost.zip"

[[games.1207658924.patches]]
version = "2.26"
url = "https://mirror.example.org/patch_226.exe"
filename = "patch.exe"
`

func writeCatalog(t *testing.T) string {
	dir, err := ioutil.TempDir("", "installkit-mirror")
	require.NoError(t, err)
	p := filepath.Join(dir, "catalog.toml")
	require.NoError(t, ioutil.WriteFile(p, []byte(sampleCatalog), 0644))
	return p
}

func Test_GetInstallerFiles(t *testing.T) {
	p := writeCatalog(t)
	defer os.RemoveAll(filepath.Dir(p))

	factory, err := Factory(installer.ServiceGOG, p, nil)
	require.NoError(t, err)
	s := factory()
	assert.EqualValues(t, installer.ServiceGOG, s.ID())
	assert.False(t, s.Online())
	assert.True(t, s.HasExtras())

	req := &installer.ServiceRequest{GameSlug: "unreal-gold", AppID: "1207658924"}
	files, err := s.GetInstallerFiles(context.Background(), req, "goginstaller", []string{"manual"})
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.EqualValues(t, "goginstaller", files[0].ID)
	assert.EqualValues(t, "setup_unreal_gold.exe", files[0].Filename)
	assert.EqualValues(t, "md5:d41d8cd98f00b204e9800998ecf8427e", files[0].Checksum)
	assert.EqualValues(t, "goginstaller_part2", files[1].ID)
	assert.EqualValues(t, "manual", files[2].ID)
	assert.EqualValues(t, "unreal-gold", files[2].GameSlug)
}

func Test_GetInstallerFilesBySlug(t *testing.T) {
	p := writeCatalog(t)
	defer os.RemoveAll(filepath.Dir(p))

	c, err := ReadCatalog(p)
	require.NoError(t, err)
	s := New("mirror", c, nil)

	files, err := s.GetInstallerFiles(context.Background(), &installer.ServiceRequest{GameSlug: "unreal-gold"}, "installer", nil)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = s.GetInstallerFiles(context.Background(), &installer.ServiceRequest{GameSlug: "quake", AppID: "1"}, "installer", nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func Test_GetPatchFiles(t *testing.T) {
	p := writeCatalog(t)
	defer os.RemoveAll(filepath.Dir(p))

	c, err := ReadCatalog(p)
	require.NoError(t, err)
	s := New("mirror", c, nil)

	req := &installer.ServiceRequest{GameSlug: "unreal-gold", AppID: "1207658924", Version: "GOG", PatchVersion: "2.26"}
	files, err := s.GetPatchFiles(context.Background(), req, "patch")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.EqualValues(t, "patch", files[0].ID)
	assert.EqualValues(t, "patch.exe", files[0].Filename)

	req.PatchVersion = "2.27"
	files, err = s.GetPatchFiles(context.Background(), req, "patch")
	require.NoError(t, err)
	assert.Empty(t, files)
}

type fakeGames struct{}

func (fg *fakeGames) GameByField(value string, field string) (*models.Game, error) {
	return nil, nil
}

func (fg *fakeGames) AddOrUpdate(game *models.Game) (int64, error) {
	return 1, nil
}

func Test_PlanPatchFromMirror(t *testing.T) {
	p := writeCatalog(t)
	defer os.RemoveAll(filepath.Dir(p))

	factory, err := Factory(installer.ServiceGOG, p, nil)
	require.NoError(t, err)
	services := installer.NewServiceRegistry()
	services.Register(installer.ServiceGOG, factory)

	script, err := installer.ParseScript(strings.NewReader(`
name: Unreal Gold
game_slug: unreal-gold
slug: unreal-gold-gog
version: GOG
runner: wine
script:
  game:
    gogid: 1207658924
  files:
    - goginstaller: "N/A:Select the GOG installer"
  installer:
    - task:
        name: wineexec
        executable: goginstaller
`))
	require.NoError(t, err)

	inst, err := installer.New(installer.Params{
		Script:      script,
		Interpreter: interpreter.New(interpreter.Params{TargetPath: "/games/unreal-gold"}),
		Services:    services,
		Games:       &fakeGames{},
		Runners:     runners.NewRegistry(),
	})
	require.NoError(t, err)
	assert.EqualValues(t, installer.ServiceGOG, inst.ServiceID())

	files, err := inst.PlanFiles(context.Background(), "2.26")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.EqualValues(t, "goginstaller", files[0].ID)
	assert.EqualValues(t, "https://mirror.example.org/patch_226.exe", files[0].URL)
	assert.EqualValues(t, "patch.exe", files[0].Filename)

	files, err = inst.PlanFiles(context.Background(), "2.27")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.EqualValues(t, installer.ProviderInstallerURL, files[0].URL, "unknown patch falls back to a manual file")
}

func Test_ReadCatalogMissing(t *testing.T) {
	_, err := ReadCatalog(filepath.Join(os.TempDir(), "does-not-exist", "catalog.toml"))
	assert.Error(t, err)
}
