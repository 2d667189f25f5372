package dialects

import (
	_ "github.com/denisenkom/go-mssqldb"

	"dbcatalog/internal/db"
)

func init() {
	db.Register(mustPack("mssql").dialect("sqlserver", "sqlserver", nil, "mssql"))
}
