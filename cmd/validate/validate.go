package validate

import (
	"github.com/lutris/installkit/cmd/operate"
	"github.com/lutris/installkit/comm"
	"github.com/lutris/installkit/installer"
	"github.com/lutris/installkit/mansion"
	"github.com/lutris/installkit/runners"
	"github.com/pkg/errors"
)

var args = struct {
	script *string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("validate", "Check an install script for mistakes")
	args.script = cmd.Arg("script", "Path of the .yml or .json install script").Required().ExistingFile()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(*args.script))
}

// Do prints every finding, and fails if there are any
func Do(scriptPath string) error {
	script, err := operate.LoadScript(scriptPath)
	if err != nil {
		return err
	}

	findings := installer.ValidateScript(script, runners.NewRegistry())
	comm.ResultOrPrint(findings, func() {
		if len(findings) == 0 {
			comm.Statf("%s (%s) looks good", script.Name, script.Slug)
			return
		}
		comm.Notice("Errors in "+scriptPath, findings)
	})

	if len(findings) > 0 {
		return errors.Errorf("%d error(s) found in %s", len(findings), scriptPath)
	}
	return nil
}
