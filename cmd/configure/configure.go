package configure

import (
	"runtime"

	"github.com/lutris/installkit/comm"
	"github.com/lutris/installkit/configurator"
	"github.com/lutris/installkit/filtering"
	"github.com/lutris/installkit/mansion"
	"github.com/pkg/errors"
)

var args = struct {
	path       *string
	windows    *bool
	archFilter *string
	noFilter   *bool
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("configure", "(Advanced) Look for the game executable in an install folder").Hidden()
	args.path = cmd.Arg("path", "The install folder (or wine prefix) to look into").Required().ExistingDir()
	args.windows = cmd.Flag("windows", "Look for a Windows executable, skipping the prefix's own files").Bool()
	args.archFilter = cmd.Flag("arch-filter", "Architecture filter").Default(runtime.GOARCH).Enum("386", "amd64")
	args.noFilter = cmd.Flag("no-filter", "Show every candidate").Bool()
	ctx.Register(cmd, do)
}

type Params struct {
	Path       string
	Windows    bool
	ArchFilter string
	NoFilter   bool
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(ctx, &Params{
		Path:       *args.path,
		Windows:    *args.windows,
		ArchFilter: *args.archFilter,
		NoFilter:   *args.noFilter,
	}))
}

func Do(ctx *mansion.Context, params *Params) error {
	filter := filtering.FilterPaths
	osFilter := "linux"
	if params.Windows {
		filter = filtering.FilterPrefixPaths
		osFilter = "windows"
	}

	comm.Opf("Collecting candidates in %s", params.Path)
	verdict, err := configurator.Configure(params.Path, filter)
	if err != nil {
		return errors.WithMessage(err, "collecting candidates")
	}

	if !params.NoFilter {
		comm.Opf("Filtering for os %s, arch %s", osFilter, params.ArchFilter)
		verdict.FilterPlatform(osFilter, params.ArchFilter)
	}

	comm.ResultOrPrint(verdict, func() {
		comm.Statf("Candidates are:\n%s", verdict)
	})

	finder := &configurator.Finder{Consumer: ctx.Consumer()}
	var exe string
	if params.Windows {
		exe, err = finder.FindWindowsExecutable(params.Path)
	} else {
		exe, err = finder.FindLinuxExecutable(params.Path, false)
	}
	if err != nil {
		return err
	}

	comm.Statf("Main executable: %s", exe)
	return nil
}
