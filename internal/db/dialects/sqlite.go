package dialects

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"dbcatalog/internal/db"
	"dbcatalog/internal/metadata"
)

// SQLite has no information_schema. Its source reads pragmas instead and
// the pack only carries vendor queries.
func init() {
	src := func(conn *sql.DB) metadata.Source { return metadata.NewSQLite(conn) }
	db.Register(mustPack("sqlite").dialect("sqlite", "sqlite", src, "sqlite3"))
}
