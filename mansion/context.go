package mansion

import (
	"crawshaw.io/sqlite"
	"github.com/itchio/wharf/state"
	"github.com/lutris/installkit/comm"
	"github.com/lutris/installkit/database"
	"github.com/lutris/installkit/settings"
	"github.com/pkg/errors"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

type DoCommand func(ctx *Context)

type Context struct {
	App      *kingpin.Application
	Commands map[string]DoCommand

	// VersionString is the complete version string
	VersionString string

	// Quiet silences all output
	Quiet bool

	// Verbose enables chatty output
	Verbose bool

	// JSON enables JSON-lines output
	JSON bool

	// SettingsPath overrides the location of installkit.toml
	SettingsPath string

	// DBPath overrides the location of the game library
	DBPath string

	settings *settings.Settings
	pool     *sqlite.Pool
}

func NewContext(app *kingpin.Application) *Context {
	return &Context{
		App:      app,
		Commands: make(map[string]DoCommand),
	}
}

func (ctx *Context) Register(clause *kingpin.CmdClause, do DoCommand) {
	ctx.Commands[clause.FullCommand()] = do
}

func (ctx *Context) Must(err error) {
	if err != nil {
		if ctx.Verbose || ctx.JSON {
			comm.Dief("%+v", err)
		} else {
			comm.Dief("%s", err)
		}
	}
}

func (ctx *Context) Consumer() *state.Consumer {
	return comm.NewStateConsumer()
}

// Settings loads installkit.toml on first use
func (ctx *Context) Settings() (*settings.Settings, error) {
	if ctx.settings != nil {
		return ctx.settings, nil
	}

	s, err := settings.Load(ctx.SettingsPath)
	if err != nil {
		return nil, errors.WithMessage(err, "loading settings")
	}
	if ctx.DBPath != "" {
		s.DBPath = ctx.DBPath
	}
	ctx.settings = s
	return s, nil
}

// Store opens (and migrates) the game library on first use
func (ctx *Context) Store() (*database.Store, error) {
	if ctx.pool == nil {
		s, err := ctx.Settings()
		if err != nil {
			return nil, err
		}

		comm.Debugf("Using database at %s", s.DBPath)
		pool, err := database.Open(s.DBPath)
		if err != nil {
			return nil, err
		}

		err = database.Prepare(ctx.Consumer(), pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		ctx.pool = pool
	}
	return &database.Store{Pool: ctx.pool}, nil
}

// Close releases the database, if it was opened
func (ctx *Context) Close() {
	if ctx.pool != nil {
		ctx.pool.Close()
		ctx.pool = nil
	}
}
