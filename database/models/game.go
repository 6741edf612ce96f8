package models

import (
	"sort"
	"time"

	"crawshaw.io/sqlite"
	"github.com/go-xorm/builder"
	"github.com/pkg/errors"
)

// Game is an install record, one row of the `games` table
type Game struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	InstallerSlug string `json:"installerSlug,omitempty"`
	ParentSlug    string `json:"parentSlug,omitempty"`
	Platform      string `json:"platform"`
	Runner        string `json:"runner"`
	Directory     string `json:"directory"`
	Installed     bool   `json:"installed"`
	// InstalledAt and Updated are unix timestamps
	InstalledAt int64  `json:"installedAt,omitempty"`
	Year        int    `json:"year,omitempty"`
	ConfigPath  string `json:"configpath"`
	Hidden      bool   `json:"hidden"`
	Service     string `json:"service,omitempty"`
	ServiceID   string `json:"serviceId,omitempty"`
	DiscordID   string `json:"discordId,omitempty"`
	Updated     int64  `json:"updated,omitempty"`
}

var gameColumns = []string{
	"id",
	"name",
	"slug",
	"installer_slug",
	"parent_slug",
	"platform",
	"runner",
	"directory",
	"installed",
	"installed_at",
	"year",
	"configpath",
	"hidden",
	"service",
	"service_id",
	"discord_id",
	"updated",
}

// lookupFields are the columns games may be looked up by
var lookupFields = map[string]bool{
	"id":             true,
	"slug":           true,
	"installer_slug": true,
	"name":           true,
	"service_id":     true,
	"configpath":     true,
}

var nowFunc = func() time.Time {
	return time.Now().UTC()
}

func scanGame(stmt *sqlite.Stmt) *Game {
	return &Game{
		ID:            stmt.GetInt64("id"),
		Name:          stmt.GetText("name"),
		Slug:          stmt.GetText("slug"),
		InstallerSlug: stmt.GetText("installer_slug"),
		ParentSlug:    stmt.GetText("parent_slug"),
		Platform:      stmt.GetText("platform"),
		Runner:        stmt.GetText("runner"),
		Directory:     stmt.GetText("directory"),
		Installed:     stmt.GetInt64("installed") != 0,
		InstalledAt:   stmt.GetInt64("installed_at"),
		Year:          int(stmt.GetInt64("year")),
		ConfigPath:    stmt.GetText("configpath"),
		Hidden:        stmt.GetInt64("hidden") != 0,
		Service:       stmt.GetText("service"),
		ServiceID:     stmt.GetText("service_id"),
		DiscordID:     stmt.GetText("discord_id"),
		Updated:       stmt.GetInt64("updated"),
	}
}

func selectGames(conn *sqlite.Conn, cond builder.Cond) ([]*Game, error) {
	var games []*Game
	b := builder.Select(gameColumns...).From("games").Where(cond)
	err := Exec(conn, b, func(stmt *sqlite.Stmt) error {
		games = append(games, scanGame(stmt))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return games, nil
}

// GameByField returns the first game whose column `field` equals
// value, or nil if there's none.
func GameByField(conn *sqlite.Conn, value string, field string) (*Game, error) {
	if !lookupFields[field] {
		return nil, errors.Errorf("can't look up games by %q", field)
	}

	games, err := selectGames(conn, builder.Eq{field: value})
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, nil
	}
	sortGames(games)
	return games[0], nil
}

// ListGames returns installed games, or all of them
func ListGames(conn *sqlite.Conn, includeUninstalled bool) ([]*Game, error) {
	var cond builder.Cond = builder.NewCond()
	if !includeUninstalled {
		cond = builder.Eq{"installed": 1}
	}

	games, err := selectGames(conn, cond)
	if err != nil {
		return nil, err
	}
	sortGames(games)
	return games, nil
}

func sortGames(games []*Game) {
	sort.Slice(games, func(i, j int) bool {
		return games[i].ID < games[j].ID
	})
}

func (g *Game) values() builder.Eq {
	installed := 0
	if g.Installed {
		installed = 1
	}
	hidden := 0
	if g.Hidden {
		hidden = 1
	}

	return builder.Eq{
		"name":           g.Name,
		"slug":           g.Slug,
		"installer_slug": nullableText(g.InstallerSlug),
		"parent_slug":    nullableText(g.ParentSlug),
		"platform":       g.Platform,
		"runner":         g.Runner,
		"directory":      g.Directory,
		"installed":      installed,
		"installed_at":   g.InstalledAt,
		"year":           nullableInt(g.Year),
		"configpath":     g.ConfigPath,
		"hidden":         hidden,
		"service":        nullableText(g.Service),
		"service_id":     nullableText(g.ServiceID),
		"discord_id":     nullableText(g.DiscordID),
		"updated":        g.Updated,
	}
}

// AddOrUpdate saves an install record and returns its id. A record is
// updated when g.ID is set, or when an uninstalled record for the same
// provider game exists. Otherwise a new record is inserted.
func AddOrUpdate(conn *sqlite.Conn, g *Game) (int64, error) {
	now := nowFunc().Unix()
	g.Updated = now
	if g.Installed && g.InstalledAt == 0 {
		g.InstalledAt = now
	}

	id := g.ID
	if id == 0 && g.Service != "" && g.ServiceID != "" {
		existing, err := selectGames(conn, builder.Eq{
			"service":    g.Service,
			"service_id": g.ServiceID,
			"installed":  0,
		})
		if err != nil {
			return 0, err
		}
		if len(existing) > 0 {
			sortGames(existing)
			id = existing[0].ID
		}
	}

	if id != 0 {
		b := builder.Update(g.values()).From("games").Where(builder.Eq{"id": id})
		err := Exec(conn, b, nil)
		if err != nil {
			return 0, errors.WithMessage(err, "updating game")
		}
		if conn.Changes() > 0 {
			g.ID = id
			return id, nil
		}
		dbConsumer.Debugf("No game #%d to update, inserting", id)
	}

	b := builder.Insert(g.values()).Into("games")
	err := Exec(conn, b, nil)
	if err != nil {
		return 0, errors.WithMessage(err, "inserting game")
	}
	g.ID = conn.LastInsertRowID()
	return g.ID, nil
}
