package games

import (
	"fmt"

	"github.com/lutris/installkit/comm"
	"github.com/lutris/installkit/database/models"
	"github.com/lutris/installkit/mansion"
)

var args = struct {
	all *bool
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("games", "List the games in the library")
	args.all = cmd.Flag("all", "Include games that aren't installed").Short('a').Bool()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	games, err := Do(ctx, *args.all)
	ctx.Must(err)

	comm.ResultOrPrint(games, func() {
		comm.Table([]string{"ID", "Name", "Slug", "Runner", "Platform", "Service", "Installed"}, Rows(games))
	})
}

func Do(ctx *mansion.Context, all bool) ([]*models.Game, error) {
	store, err := ctx.Store()
	if err != nil {
		return nil, err
	}
	return store.ListGames(all)
}

func Rows(games []*models.Game) [][]string {
	var rows [][]string
	for _, g := range games {
		service := g.Service
		if service != "" && g.ServiceID != "" {
			service = fmt.Sprintf("%s:%s", g.Service, g.ServiceID)
		}
		installed := "no"
		if g.Installed {
			installed = "yes"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", g.ID), g.Name, g.Slug, g.Runner, g.Platform, service, installed,
		})
	}
	return rows
}
