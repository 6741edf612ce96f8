package main

import (
	"log"
	"os"

	"github.com/lutris/installkit/buildinfo"
	"github.com/lutris/installkit/cmd/configure"
	"github.com/lutris/installkit/cmd/games"
	"github.com/lutris/installkit/cmd/install"
	"github.com/lutris/installkit/cmd/plan"
	"github.com/lutris/installkit/cmd/validate"
	"github.com/lutris/installkit/comm"
	"github.com/lutris/installkit/mansion"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("installkit", "Resolve Lutris install scripts into game configs")
)

var appArgs = struct {
	json       *bool
	quiet      *bool
	verbose    *bool
	timestamps *bool
	settings   *string
	dbPath     *string
}{
	app.Flag("json", "Enable machine-readable JSON-lines output").Short('j').Bool(),
	app.Flag("quiet", "Hide extra info").Short('q').Bool(),
	app.Flag("verbose", "Display as much extra info as possible").Short('v').Bool(),
	app.Flag("timestamps", "Prefix all output by timestamps (for logging purposes)").Bool(),
	app.Flag("settings", "Path of installkit.toml").Envar("INSTALLKIT_SETTINGS").String(),
	app.Flag("db", "Path of the game library (pga.db)").Envar("INSTALLKIT_DB").String(),
}

func main() {
	ctx := mansion.NewContext(app)
	ctx.VersionString = buildinfo.VersionString()

	validate.Register(ctx)
	plan.Register(ctx)
	install.Register(ctx)
	games.Register(ctx)
	configure.Register(ctx)

	app.HelpFlag.Short('h')
	app.Version(ctx.VersionString)
	app.VersionFlag.Short('V')

	cmd, err := app.Parse(os.Args[1:])
	if *appArgs.timestamps {
		log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	} else {
		log.SetFlags(0)
	}

	ctx.Quiet = *appArgs.quiet
	ctx.Verbose = *appArgs.verbose
	ctx.JSON = *appArgs.json
	ctx.SettingsPath = *appArgs.settings
	ctx.DBPath = *appArgs.dbPath
	comm.Configure(ctx.Quiet, ctx.Verbose, ctx.JSON, false)

	fullCmd := kingpin.MustParse(cmd, err)
	do, ok := ctx.Commands[fullCmd]
	if !ok {
		comm.Dief("Unknown command %s", fullCmd)
	}

	defer ctx.Close()
	do(ctx)
}
