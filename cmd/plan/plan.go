package plan

import (
	"context"

	"github.com/lutris/installkit/cmd/operate"
	"github.com/lutris/installkit/comm"
	"github.com/lutris/installkit/installer"
	"github.com/lutris/installkit/mansion"
)

var args = struct {
	script       *string
	service      *string
	appID        *string
	patchVersion *string
	extras       *[]string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("plan", "List the files an install script needs, without downloading anything")
	args.script = cmd.Arg("script", "Path of the .yml or .json install script").Required().ExistingFile()
	args.service = cmd.Flag("service", "Provider to get the installer from").String()
	args.appID = cmd.Flag("appid", "Identifier of the game on the provider").String()
	args.patchVersion = cmd.Flag("patch-version", "Get the patch for this version instead of the installer").String()
	args.extras = cmd.Flag("extra", "Bonus content to download along the installer").Strings()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	files, err := Do(ctx)
	ctx.Must(err)

	comm.ResultOrPrint(files, func() {
		if len(files) == 0 {
			comm.Statf("Nothing to download")
			return
		}
		comm.Table([]string{"ID", "URL", "Filename", "Checksum"}, Rows(files))
	})
}

func Do(ctx *mansion.Context) ([]*installer.InstallerFile, error) {
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
		Extras:     *args.extras,
		Settings:   s,
		Store:      store,
		Consumer:   ctx.Consumer(),
	})
	if err != nil {
		return nil, err
	}

	return session.Installer.PlanFiles(context.Background(), *args.patchVersion)
}

func Rows(files []*installer.InstallerFile) [][]string {
	var rows [][]string
	for _, f := range files {
		rows = append(rows, []string{f.ID, f.URL, f.Filename, f.Checksum})
	}
	return rows
}
