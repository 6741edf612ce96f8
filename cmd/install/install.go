package install

import (
	"context"
	"path/filepath"

	"github.com/lutris/installkit/cmd/operate"
	"github.com/lutris/installkit/comm"
	"github.com/lutris/installkit/installer"
	"github.com/lutris/installkit/mansion"
	"github.com/pkg/errors"
)

var args = struct {
	script       *string
	target       *string
	service      *string
	appID        *string
	patchVersion *string
	files        *map[string]string
	vars         *map[string]string
	extras       *[]string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("install", "Resolve an install script's config and record the game in the library")
	args.script = cmd.Arg("script", "Path of the .yml or .json install script").Required().ExistingFile()
	args.target = cmd.Flag("target", "Folder the game is installed in").Short('t').String()
	args.service = cmd.Flag("service", "Provider to get the installer from").String()
	args.appID = cmd.Flag("appid", "Identifier of the game on the provider").String()
	args.patchVersion = cmd.Flag("patch-version", "Get the patch for this version instead of the installer").String()
	args.files = cmd.Flag("file", "Where a file already is on disk (id=path)").StringMap()
	args.vars = cmd.Flag("var", "Override a script variable (key=value)").StringMap()
	args.extras = cmd.Flag("extra", "Bonus content to download along the installer").Strings()
	ctx.Register(cmd, do)
}

type Result struct {
	GameID         int64             `json:"gameId"`
	InstalledFiles map[string]string `json:"installedFiles"`
}

func do(ctx *mansion.Context) {
	res, err := Do(ctx)
	ctx.Must(err)

	comm.ResultOrPrint(res, func() {
		comm.Statf("Game #%d is ready", res.GameID)
	})
}

func Do(ctx *mansion.Context) (*Result, error) {
	s, err := ctx.Settings()
	if err != nil {
		return nil, err
	}
	store, err := ctx.Store()
	if err != nil {
		return nil, err
	}

	session, err := operate.Prepare(operate.Params{
		ScriptPath: *args.script,
		Service:    *args.service,
		AppID:      *args.appID,
		TargetPath: *args.target,
		Variables:  *args.vars,
		Extras:     *args.extras,
		Settings:   s,
		Store:      store,
		Consumer:   ctx.Consumer(),
	})
	if err != nil {
		return nil, err
	}
	inst := session.Installer

	comm.Opf("Installing %s to %s", inst.Name, session.Interpreter.TargetPath())
	if inst.GameID != 0 {
		comm.Logf("Resuming game #%d", inst.GameID)
	}

	files, err := inst.PlanFiles(context.Background(), *args.patchVersion)
	if err != nil {
		return nil, err
	}

	installedFiles, err := placeFiles(files, *args.files, session.Interpreter.TargetPath())
	if err != nil {
		return nil, err
	}
	for id, p := range installedFiles {
		session.Interpreter.SetGameFile(id, p)
	}

	cfg, err := inst.ResolveConfig(installedFiles)
	if err != nil {
		return nil, err
	}

	id, err := inst.Commit(cfg)
	if err != nil {
		return nil, err
	}

	return &Result{
		GameID:         id,
		InstalledFiles: installedFiles,
	}, nil
}

// placeFiles says where each planned file is: where the user said,
// or under its own name in the target folder.
func placeFiles(files []*installer.InstallerFile, overrides map[string]string, targetPath string) (map[string]string, error) {
	installedFiles := make(map[string]string)
	for _, f := range files {
		if p, ok := overrides[f.ID]; ok {
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			installedFiles[f.ID] = abs
			continue
		}

		if f.Filename == "" {
			return nil, errors.Errorf("file '%s' must be provided with --file %s=path (%s)", f.ID, f.ID, f.URL)
		}
		installedFiles[f.ID] = filepath.Join(targetPath, f.Filename)
	}
	return installedFiles, nil
}
