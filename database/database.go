package database

import (
	"context"
	"os"
	"path/filepath"

	"crawshaw.io/sqlite"
	"github.com/itchio/wharf/state"
	"github.com/lutris/installkit/database/models"
	"github.com/lutris/installkit/database/models/migrations"
	"github.com/pkg/errors"
)

const poolSize = 4

// Open returns a connection pool to the game library (pga.db)
func Open(dbPath string) (*sqlite.Pool, error) {
	err := os.MkdirAll(filepath.Dir(dbPath), 0755)
	if err != nil {
		return nil, errors.Wrap(err, "creating db directory")
	}

	pool, err := sqlite.Open(dbPath, 0, poolSize)
	if err != nil {
		return nil, errors.Wrap(err, "opening SQLite database")
	}
	return pool, nil
}

// Prepare creates tables and runs migrations
func Prepare(consumer *state.Consumer, pool *sqlite.Pool) error {
	conn := pool.Get(context.Background().Done())
	if conn == nil {
		return errors.New("could not get a database connection")
	}
	defer pool.Put(conn)

	err := migrations.Do(consumer, conn)
	if err != nil {
		return errors.WithMessage(err, "migrating database")
	}
	return nil
}

// Store is the game library, as seen by installers
type Store struct {
	Pool *sqlite.Pool
}

func (s *Store) withConn(f func(conn *sqlite.Conn) error) error {
	conn := s.Pool.Get(context.Background().Done())
	if conn == nil {
		return errors.New("could not get a database connection")
	}
	defer s.Pool.Put(conn)
	return f(conn)
}

func (s *Store) GameByField(value string, field string) (*models.Game, error) {
	var game *models.Game
	err := s.withConn(func(conn *sqlite.Conn) error {
		var err error
		game, err = models.GameByField(conn, value, field)
		return err
	})
	return game, err
}

func (s *Store) AddOrUpdate(game *models.Game) (int64, error) {
	var id int64
	err := s.withConn(func(conn *sqlite.Conn) error {
		var err error
		id, err = models.AddOrUpdate(conn, game)
		return err
	})
	return id, err
}

func (s *Store) ListGames(includeUninstalled bool) ([]*models.Game, error) {
	var games []*models.Game
	err := s.withConn(func(conn *sqlite.Conn) error {
		var err error
		games, err = models.ListGames(conn, includeUninstalled)
		return err
	})
	return games, err
}
