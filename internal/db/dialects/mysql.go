package dialects

import (
	_ "github.com/go-sql-driver/mysql"

	"dbcatalog/internal/db"
)

func init() {
	db.Register(mustPack("mysql").dialect("mysql", "mysql", nil, "mariadb"))
}
