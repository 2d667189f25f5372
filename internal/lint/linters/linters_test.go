package linters

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/lint"
	"dbcatalog/internal/metadata"
)

// shop builds a frozen catalog by hand: CUSTOMERS, ORDERS and ITEMS, with
// ORDERS and ITEMS referencing each other, and the view BIG_ORDERS.
func shop(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := catalog.New("SHOP", false)
	require.NoError(t, cat.BeginPopulating())
	s, _ := cat.ResolveSchema(catalog.Key{Schema: "SALES"})

	cols := func(tbl *catalog.Table, names ...string) {
		for i, n := range names {
			c, _ := tbl.ResolveColumn(n)
			c.Ordinal = i + 1
			c.Type = s.ResolveDataType(catalog.TypeInteger, "INTEGER")
		}
	}
	col := func(tbl *catalog.Table, name string) *catalog.Column {
		c, ok := tbl.LookupColumn(name)
		require.True(t, ok, name)
		return c
	}
	fk := func(name string, from *catalog.Table, fromCol string, to *catalog.Table, toCol string) {
		f := catalog.NewForeignKey(from.Key(), name)
		f.AddReference(catalog.ColumnReference{KeySequence: 1, ForeignKeyColumn: col(from, fromCol), PrimaryKeyColumn: col(to, toCol)})
		from.AttachForeignKey(f)
		to.AttachForeignKey(f)
	}

	customers, _ := s.ResolveTable("CUSTOMERS", catalog.KindTable)
	cols(customers, "ID", "NAME")
	customers.PrimaryKey = catalog.NewPrimaryKey(customers, "CUSTOMERS_PK")
	customers.PrimaryKey.AddColumn(col(customers, "ID"), 1, false)

	orders, _ := s.ResolveTable("ORDERS", catalog.KindTable)
	cols(orders, "ID", "CUSTOMER_ID", "LAST_ITEM_ID")
	idx, _ := orders.ResolveIndex("ORDERS_CUSTOMER")
	idx.AddColumn(col(orders, "CUSTOMER_ID"), 1, false)
	dup, _ := orders.ResolveIndex("ORDERS_CUSTOMER_AGAIN")
	dup.AddColumn(col(orders, "CUSTOMER_ID"), 1, false)

	items, _ := s.ResolveTable("ITEMS", catalog.KindTable)
	cols(items, "ID", "ORDER_ID")
	byID, _ := items.ResolveIndex("ITEMS_ID")
	byID.Unique = true
	byID.AddColumn(col(items, "ID"), 1, false)
	items.PrimaryKey = catalog.NewPrimaryKey(items, "ITEMS_PK")
	items.PrimaryKey.AddColumn(col(items, "ID"), 1, false)

	fk("FK_ORDERS_CUSTOMER", orders, "CUSTOMER_ID", customers, "ID")
	fk("FK_ORDERS_LAST_ITEM", orders, "LAST_ITEM_ID", items, "ID")
	fk("FK_ITEMS_ORDER", items, "ORDER_ID", orders, "ID")

	view, _ := s.ResolveTable("BIG_ORDERS", catalog.KindView)
	cols(view, "ID")

	cat.Freeze()
	return cat
}

func lintShop(t *testing.T, cfg lint.LinterConfig, db metadata.Querier) *lint.Result {
	t.Helper()
	res, err := lint.LintCatalog(context.Background(), shop(t), db, []lint.LinterConfig{cfg}, false)
	require.NoError(t, err)
	return res
}

func values(lints []lint.Lint) []string {
	out := make([]string, len(lints))
	for i, l := range lints {
		out[i] = l.Target + ": " + l.Value
	}
	return out
}

func TestShopLinters(t *testing.T) {
	tests := []struct {
		id   string
		want []string
	}{
		{"cycles", []string{"SALES.ITEMS: ITEMS, ORDERS", "SALES.ORDERS: ITEMS, ORDERS"}},
		{"redundant-indexes", []string{"SALES.ITEMS: ITEMS_ID", "SALES.ORDERS: ORDERS_CUSTOMER_AGAIN"}},
		{"foreign-key-no-index", []string{"SALES.ITEMS: FK_ITEMS_ORDER", "SALES.ORDERS: FK_ORDERS_LAST_ITEM"}},
		{"no-primary-key", []string{"SALES.ORDERS: "}},
		{"foreign-key-self-reference", []string{}},
		{"single-column", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			res := lintShop(t, lint.LinterConfig{ID: tt.id}, nil)
			require.Empty(t, res.Failures)
			assert.Equal(t, tt.want, values(res.Lints))
		})
	}
}

func TestEmptyTable(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	for _, tc := range []struct {
		table string
		count int
	}{{"CUSTOMERS", 0}, {"ITEMS", 5}, {"ORDERS", 0}} {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM SALES." + tc.table)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tc.count))
	}

	res := lintShop(t, lint.LinterConfig{ID: "empty-table"}, conn)
	require.Empty(t, res.Failures)
	assert.Equal(t, []string{"SALES.CUSTOMERS: ", "SALES.ORDERS: "}, values(res.Lints))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableSQL(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	query := "SELECT CASE WHEN COUNT(*) > 100 THEN 'large' END FROM ${table}"
	mock.ExpectQuery(regexp.QuoteMeta("FROM SALES.CUSTOMERS")).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("large"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM SALES.ITEMS")).
		WillReturnRows(sqlmock.NewRows([]string{"v"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM SALES.ORDERS")).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(nil))

	res := lintShop(t, lint.LinterConfig{
		ID:                    "table-sql",
		TableExclusionPattern: ".*BIG_ORDERS",
		Options:               map[string]any{"sql": query, "message": "large table"},
	}, conn)
	require.Empty(t, res.Failures)
	require.Len(t, res.Lints, 1)
	assert.Equal(t, "large table", res.Lints[0].Message)
	assert.Equal(t, "SALES.CUSTOMERS: large", values(res.Lints)[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableSQLIsOptIn(t *testing.T) {
	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	e, err := lint.New(nil, true)
	require.NoError(t, err)
	assert.NotContains(t, e.IDs(), "table-sql")
	assert.Contains(t, e.IDs(), "empty-table")

	res := lintShop(t, lint.LinterConfig{ID: "table-sql"}, conn)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0].Error(), "no sql configured")
}

func TestBadColumnNamesPattern(t *testing.T) {
	res := lintShop(t, lint.LinterConfig{ID: "bad-column-names", Options: map[string]any{"bad-column-names": "("}}, nil)
	require.Len(t, res.Failures, 1)

	res = lintShop(t, lint.LinterConfig{ID: "bad-column-names", Options: map[string]any{"bad-column-names": `.*_ID`}}, nil)
	assert.Equal(t, []string{
		"SALES.ITEMS.ORDER_ID: ORDER_ID",
		"SALES.ORDERS.CUSTOMER_ID: CUSTOMER_ID",
		"SALES.ORDERS.LAST_ITEM_ID: LAST_ITEM_ID",
	}, values(res.Lints))
}

func TestNumberedPrefix(t *testing.T) {
	tests := []struct {
		in     string
		prefix string
		ok     bool
	}{
		{"PHONE1", "PHONE", true},
		{"address_12", "ADDRESS_", true},
		{"NAME", "", false},
		{"123", "", false},
	}
	for _, tt := range tests {
		prefix, ok := numberedPrefix(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.prefix, prefix, tt.in)
	}
}

func TestNeedsQuotes(t *testing.T) {
	for name, want := range map[string]bool{
		"ORDERS":      false,
		"order_id":    false,
		"REVIEW TEXT": true,
		"DATE":        true,
		"select":      true,
		"1ST":         true,
		"KÜNDE":       true,
	} {
		assert.Equal(t, want, needsQuotes(name), name)
	}
	assert.Equal(t, `"my schema"."ORDER"`, ansiQuoting.identifier("my schema")+"."+ansiQuoting.identifier("ORDER"))
}

// mysqlShop is a frozen catalog shaped like a MySQL crawl: catalog "def",
// the database as schema.
func mysqlShop(t *testing.T, tables ...string) *catalog.Catalog {
	t.Helper()
	cat := catalog.New("shop", false)
	cat.Info.Dialect = "mysql"
	require.NoError(t, cat.BeginPopulating())
	s, _ := cat.ResolveSchema(catalog.Key{Catalog: "def", Schema: "shop"})
	for _, name := range tables {
		s.ResolveTable(name, catalog.KindTable)
	}
	cat.Freeze()
	return cat
}

func TestQuotedTableName(t *testing.T) {
	tests := []struct {
		dialect string
		key     catalog.Key
		want    string
	}{
		{"mysql", catalog.Key{Catalog: "def", Schema: "shop", Name: "order"}, "shop.`order`"},
		{"mysql", catalog.Key{Catalog: "def", Schema: "shop", Name: "odd`name"}, "shop.`odd``name`"},
		{"sqlserver", catalog.Key{Catalog: "erp", Schema: "dbo", Name: "line items"}, "erp.dbo.[line items]"},
		{"postgres", catalog.Key{Catalog: "shop", Schema: "public", Name: "User"}, `shop.public."User"`},
		{"sqlite", catalog.Key{Schema: "main", Name: "orders"}, "main.orders"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+" "+tt.key.Name, func(t *testing.T) {
			cat := catalog.New("c", false)
			s, _ := cat.ResolveSchema(tt.key.SchemaKey())
			tbl, _ := s.ResolveTable(tt.key.Name, catalog.KindTable)
			assert.Equal(t, tt.want, quotedTableName(tt.dialect, tbl))
		})
	}
}

func TestSQLLintersOnMySQL(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer conn.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT COUNT(*) FROM shop.customers").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT COUNT(*) FROM shop.`order`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT MAX(id) FROM shop.customers").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(nil))
	mock.ExpectQuery("SELECT MAX(id) FROM shop.`order`").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("7"))

	res, err := lint.LintCatalog(context.Background(), mysqlShop(t, "customers", "order"), conn, []lint.LinterConfig{
		{ID: "empty-table"},
		{ID: "table-sql", Options: map[string]any{"sql": "SELECT MAX(id) FROM ${table}"}},
	}, false)
	require.NoError(t, err)
	require.Empty(t, res.Failures)
	assert.Equal(t, []string{"def.shop.order: ", "def.shop.order: 7"}, values(res.Lints))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationOrder(t *testing.T) {
	var ids []string
	for _, def := range lint.GetAll() {
		ids = append(ids, def.ID)
	}
	require.Len(t, ids, 18)
	assert.Equal(t, "no-primary-key", ids[0])
	assert.Equal(t, "table-sql", ids[len(ids)-1])
}
