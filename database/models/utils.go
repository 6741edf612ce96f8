package models

import (
	"log"
	"os"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqliteutil"
	"github.com/go-xorm/builder"
	"github.com/itchio/wharf/state"
	"github.com/pkg/errors"
)

var dbConsumer *state.Consumer
var logSql = os.Getenv("LUTRIS_SQL_DEBUG") == "1"

func init() {
	dbConsumer = &state.Consumer{}
	if logSql {
		dbConsumer.OnMessage = func(lvl string, message string) {
			log.Printf("[sql] [%s] %s", lvl, message)
		}
	}
}

type ResultFn func(stmt *sqlite.Stmt) error

// Exec builds a query and runs it, calling resultFn for every row
func Exec(conn *sqlite.Conn, b *builder.Builder, resultFn ResultFn) error {
	query, args, err := b.ToSQL()
	if err != nil {
		return errors.WithStack(err)
	}
	return ExecRaw(conn, query, resultFn, args...)
}

func ExecRaw(conn *sqlite.Conn, query string, resultFn ResultFn, args ...interface{}) error {
	if logSql {
		dbConsumer.Debugf("%s %v", query, args)
	}
	err := sqliteutil.Exec(conn, query, resultFn, args...)
	if err != nil {
		return errors.Wrapf(err, "executing %s", query)
	}
	return nil
}

func nullableInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

func nullableText(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
