//go:build duckdb

package dialects

import (
	_ "github.com/marcboeker/go-duckdb"

	"dbcatalog/internal/db"
)

func init() {
	db.Register(mustPack("duckdb").dialect("duckdb", "duckdb", nil))
}
