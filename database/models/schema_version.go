package models

import (
	"crawshaw.io/sqlite"
	"github.com/go-xorm/builder"
)

const SchemaVersionID = "database"

func GetSchemaVersion(conn *sqlite.Conn) (int64, error) {
	var version int64
	b := builder.Select("version").From("schema_versions").Where(builder.Eq{"id": SchemaVersionID})
	err := Exec(conn, b, func(stmt *sqlite.Stmt) error {
		version = stmt.ColumnInt64(0)
		return nil
	})
	return version, err
}

func SetSchemaVersion(conn *sqlite.Conn, version int64) error {
	return ExecRaw(conn,
		"INSERT OR REPLACE INTO schema_versions (id, version) VALUES (?, ?)",
		nil, SchemaVersionID, version)
}
