package migrations

import (
	"sort"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqliteutil"
	"github.com/itchio/wharf/state"
	"github.com/lutris/installkit/database/models"
	"github.com/pkg/errors"
)

type Migration func(consumer *state.Consumer, conn *sqlite.Conn) error

var migrations = map[int64]Migration{
	// the games table, as the desktop client lays it out
	1546300800: func(consumer *state.Consumer, conn *sqlite.Conn) error {
		return sqliteutil.ExecScript(conn, `
			CREATE TABLE IF NOT EXISTS games (
				id INTEGER PRIMARY KEY,
				name TEXT,
				slug TEXT,
				installer_slug TEXT,
				parent_slug TEXT,
				platform TEXT,
				runner TEXT,
				executable TEXT,
				directory TEXT,
				updated DATETIME,
				lastplayed INTEGER,
				installed INTEGER,
				installed_at INTEGER,
				year INTEGER,
				configpath TEXT,
				has_custom_banner INTEGER,
				has_custom_icon INTEGER,
				playtime REAL,
				hidden INTEGER,
				service TEXT,
				service_id TEXT
			);
			CREATE INDEX IF NOT EXISTS games_slug ON games (slug);
			CREATE INDEX IF NOT EXISTS games_installer_slug ON games (installer_slug);
		`)
	},
	// rich presence ids
	1577836800: func(consumer *state.Consumer, conn *sqlite.Conn) error {
		hasColumn := false
		err := sqliteutil.Exec(conn, "PRAGMA table_info(games)", func(stmt *sqlite.Stmt) error {
			if stmt.GetText("name") == "discord_id" {
				hasColumn = true
			}
			return nil
		})
		if err != nil {
			return err
		}
		if hasColumn {
			return nil
		}

		consumer.Infof("Adding discord_id to games")
		return sqliteutil.ExecScript(conn, `ALTER TABLE games ADD COLUMN discord_id TEXT;`)
	},
}

// Do creates the schema bookkeeping table, then runs every migration
// newer than the current schema version, each in its own savepoint.
func Do(consumer *state.Consumer, conn *sqlite.Conn) error {
	err := sqliteutil.ExecScript(conn, `
		CREATE TABLE IF NOT EXISTS schema_versions (
			id TEXT PRIMARY KEY,
			version INTEGER
		);
	`)
	if err != nil {
		return errors.Wrap(err, "creating schema_versions table")
	}

	currentVersion, err := models.GetSchemaVersion(conn)
	if err != nil {
		return errors.Wrap(err, "getting schema version")
	}
	consumer.Debugf("Current DB version is %d", currentVersion)
	consumer.Debugf("Latest migration is   %d", LatestSchemaVersion())

	todo := getKeysAfter(currentVersion)
	if len(todo) == 0 {
		consumer.Debugf("No migrations to run")
		return nil
	}

	consumer.Debugf("%d migrations to run (%v)", len(todo), todo)
	for _, key := range todo {
		consumer.Debugf("Running migration %d...", key)
		migration := migrations[key]
		err := func() (retErr error) {
			// run migration in a transaction
			defer sqliteutil.Save(conn)(&retErr)
			err := migration(consumer, conn)
			if err != nil {
				return err
			}
			return models.SetSchemaVersion(conn, key)
		}()
		if err != nil {
			return errors.Wrapf(err, "While running migration %d", key)
		}
	}

	return nil
}

var sortedKeys []int64

func getSortedKeys() []int64 {
	if sortedKeys == nil {
		var keys []int64
		for k := range migrations {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i int, j int) bool {
			return keys[i] < keys[j]
		})
		sortedKeys = keys
	}
	return sortedKeys
}

func getKeysAfter(version int64) []int64 {
	var result []int64
	for _, k := range getSortedKeys() {
		if k > version {
			result = append(result, k)
		}
	}
	return result
}

func LatestSchemaVersion() int64 {
	keys := getSortedKeys()
	if len(keys) == 0 {
		return 0
	}
	return keys[len(keys)-1]
}
