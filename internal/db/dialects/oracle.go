//go:build oracle

package dialects

import (
	_ "github.com/godror/godror"

	"dbcatalog/internal/db"
)

// Oracle needs the Oracle client libraries at build time, so it is only
// compiled with the oracle tag.
func init() {
	db.Register(mustPack("oracle").dialect("godror", "godror", nil, "oracle"))
}
