package database_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/itchio/wharf/state"
	"github.com/lutris/installkit/database"
	"github.com/lutris/installkit/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*database.Store, func()) {
	dir, err := ioutil.TempDir("", "installkit-db")
	require.NoError(t, err)

	pool, err := database.Open(filepath.Join(dir, "pga.db"))
	require.NoError(t, err)

	consumer := &state.Consumer{
		OnMessage: func(lvl string, msg string) {
			t.Logf("[%s] %s", lvl, msg)
		},
	}
	require.NoError(t, database.Prepare(consumer, pool))
	// migrations are idempotent
	require.NoError(t, database.Prepare(consumer, pool))

	return &database.Store{Pool: pool}, func() {
		pool.Close()
		os.RemoveAll(dir)
	}
}

func Test_AddOrUpdate(t *testing.T) {
	store, cleanup := openStore(t)
	defer cleanup()

	game, err := store.GameByField("quake", "slug")
	require.NoError(t, err)
	assert.Nil(t, game)

	id, err := store.AddOrUpdate(&models.Game{
		Name:          "Quake",
		Slug:          "quake",
		InstallerSlug: "quake-gog",
		Runner:        "linux",
		Platform:      "Linux",
		Directory:     "/games/quake",
		Installed:     true,
		Year:          1996,
		ConfigPath:    "quake-1546300800",
		Service:       "gog",
		ServiceID:     "1435827232",
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	game, err = store.GameByField("quake-gog", "installer_slug")
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.EqualValues(t, id, game.ID)
	assert.EqualValues(t, "Quake", game.Name)
	assert.EqualValues(t, 1996, game.Year)
	assert.True(t, game.Installed)
	assert.False(t, game.Hidden)
	assert.NotZero(t, game.InstalledAt)
	assert.EqualValues(t, "", game.ParentSlug)

	// explicit id updates in place
	game.Directory = "/games/quake2"
	id2, err := store.AddOrUpdate(game)
	require.NoError(t, err)
	assert.EqualValues(t, id, id2)

	games, err := store.ListGames(true)
	require.NoError(t, err)
	assert.Len(t, games, 1)
	assert.EqualValues(t, "/games/quake2", games[0].Directory)
}

func Test_AddOrUpdateMatchesUninstalledServiceGame(t *testing.T) {
	store, cleanup := openStore(t)
	defer cleanup()

	id, err := store.AddOrUpdate(&models.Game{
		Name:      "Owned game",
		Slug:      "owned-game",
		Runner:    "wine",
		Installed: false,
		Service:   "gog",
		ServiceID: "123",
	})
	require.NoError(t, err)

	id2, err := store.AddOrUpdate(&models.Game{
		Name:      "Owned game",
		Slug:      "owned-game",
		Runner:    "wine",
		Installed: true,
		Service:   "gog",
		ServiceID: "123",
	})
	require.NoError(t, err)
	assert.EqualValues(t, id, id2)

	installed, err := store.ListGames(false)
	require.NoError(t, err)
	assert.Len(t, installed, 1)

	// already installed: a new record is created
	id3, err := store.AddOrUpdate(&models.Game{
		Name:      "Owned game",
		Slug:      "owned-game",
		Runner:    "wine",
		Installed: true,
		Service:   "gog",
		ServiceID: "123",
	})
	require.NoError(t, err)
	assert.NotEqual(t, id, id3)
}

func Test_GameByFieldRejectsUnknownFields(t *testing.T) {
	store, cleanup := openStore(t)
	defer cleanup()

	_, err := store.GameByField("x", "slug; DROP TABLE games")
	assert.Error(t, err)
}
