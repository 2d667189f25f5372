package dialects

import (
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"dbcatalog/internal/db"
)

// PostgreSQL is served by two drivers: lib/pq registers "postgres" and the
// pgx stdlib adapter registers "pgx". Both share one pack.
func init() {
	p := mustPack("postgres")
	db.Register(p.dialect("postgres", "postgres", nil, "postgresql", "pg"))
	db.Register(p.dialect("pgx", "pgx", nil))
}
