package crawl

import (
	"context"
	"sync"

	"dbcatalog/internal/metadata"
)

type record = map[string]any

// fakeSource serves canned rows and counts calls. Methods without data
// answer ErrUnsupported.
type fakeSource struct {
	mu    sync.Mutex
	calls map[string][]metadata.Object
	data  map[string]func(metadata.Object) (metadata.Rows, error)
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls: make(map[string][]metadata.Object),
		data:  make(map[string]func(metadata.Object) (metadata.Rows, error)),
	}
}

func (f *fakeSource) set(method string, fn func(metadata.Object) (metadata.Rows, error)) *fakeSource {
	f.data[method] = fn
	return f
}

func (f *fakeSource) fail(method string, err error) *fakeSource {
	return f.set(method, func(metadata.Object) (metadata.Rows, error) { return nil, err })
}

func (f *fakeSource) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls[method])
}

func (f *fakeSource) do(method string, o metadata.Object) (metadata.Rows, error) {
	f.mu.Lock()
	f.calls[method] = append(f.calls[method], o)
	fn := f.data[method]
	f.mu.Unlock()
	if fn == nil {
		return nil, metadata.ErrUnsupported
	}
	return fn(o)
}

// byObject serves the records matching the requested object, comparing the
// <prefix>_SCHEM and <prefix>_NAME columns.
func byObject(prefix string, records ...record) func(metadata.Object) (metadata.Rows, error) {
	return func(o metadata.Object) (metadata.Rows, error) {
		var out []map[string]any
		for _, r := range records {
			if o.Schema != "" && r[prefix+"_SCHEM"] != o.Schema {
				continue
			}
			if o.Name != "" && r[prefix+"_NAME"] != o.Name {
				continue
			}
			out = append(out, r)
		}
		return metadata.NewRows(out...), nil
	}
}

func (f *fakeSource) Schemas(context.Context) (metadata.Rows, error) {
	return f.do("schemas", metadata.All)
}
func (f *fakeSource) Tables(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("tables", o)
}
func (f *fakeSource) Columns(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("columns", o)
}
func (f *fakeSource) PrimaryKeys(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("primary_keys", o)
}
func (f *fakeSource) Indexes(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("indexes", o)
}
func (f *fakeSource) ForeignKeys(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("foreign_keys", o)
}
func (f *fakeSource) TableConstraints(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("table_constraints", o)
}
func (f *fakeSource) CheckConstraints(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("check_constraints", o)
}
func (f *fakeSource) Triggers(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("triggers", o)
}
func (f *fakeSource) TablePrivileges(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("table_privileges", o)
}
func (f *fakeSource) ViewDefinitions(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("view_definitions", o)
}
func (f *fakeSource) Routines(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("routines", o)
}
func (f *fakeSource) RoutineParameters(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("routine_parameters", o)
}
func (f *fakeSource) RoutineDefinitions(_ context.Context, o metadata.Object) (metadata.Rows, error) {
	return f.do("routine_definitions", o)
}

func shopTable(name string) record {
	return record{"TABLE_SCHEM": "shop", "TABLE_NAME": name}
}

func with(r record, kv ...any) record {
	out := make(record, len(r)+len(kv)/2)
	for k, v := range r {
		out[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i].(string)] = kv[i+1]
	}
	return out
}

// shopSource describes a small schema:
//
//	shop.customers (id PK, name)
//	shop.orders    (id PK, customer_id -> customers.id, note) with a check
//	               constraint and an insert/update trigger
//	shop.order_totals view
//	shop.total(cust_id) function and shop.cleanup procedure
func shopSource() *fakeSource {
	f := newFakeSource()
	f.set("schemas", byObject("TABLE", record{"TABLE_SCHEM": "shop", "REMARKS": "the shop"}))
	f.set("tables", byObject("TABLE",
		with(shopTable("customers"), "TABLE_TYPE", "TABLE", "REMARKS", "who buys"),
		with(shopTable("orders"), "TABLE_TYPE", "BASE TABLE", "ENGINE", "InnoDB"),
		with(shopTable("order_totals"), "TABLE_TYPE", "VIEW"),
	))
	f.set("columns", byObject("TABLE",
		with(shopTable("customers"), "COLUMN_NAME", "id", "ORDINAL_POSITION", int64(1), "TYPE_NAME", "INTEGER", "IS_NULLABLE", "NO"),
		with(shopTable("customers"), "COLUMN_NAME", "name", "ORDINAL_POSITION", int64(2), "TYPE_NAME", "VARCHAR", "COLUMN_SIZE", int64(100), "IS_NULLABLE", "YES"),
		with(shopTable("orders"), "COLUMN_NAME", "note", "ORDINAL_POSITION", int64(3), "TYPE_NAME", "CLOB"),
		with(shopTable("orders"), "COLUMN_NAME", "id", "ORDINAL_POSITION", int64(1), "TYPE_NAME", "INTEGER", "IS_NULLABLE", "NO"),
		with(shopTable("orders"), "COLUMN_NAME", "customer_id", "ORDINAL_POSITION", int64(2), "TYPE_NAME", "NUMERIC", "NUMERIC_PRECISION", int64(10), "IS_NULLABLE", "YES"),
		with(shopTable("order_totals"), "COLUMN_NAME", "customer_id", "ORDINAL_POSITION", int64(1), "TYPE_NAME", "INTEGER"),
	))
	f.set("primary_keys", byObject("TABLE",
		with(shopTable("customers"), "COLUMN_NAME", "id", "KEY_SEQ", int64(1), "PK_NAME", "customers_pkey"),
		with(shopTable("orders"), "COLUMN_NAME", "id", "KEY_SEQ", int64(1)),
	))
	f.set("indexes", byObject("TABLE",
		with(shopTable("orders"), "INDEX_NAME", "idx_orders_customer", "NON_UNIQUE", int64(1), "COLUMN_NAME", "customer_id", "ORDINAL_POSITION", int64(1)),
		with(shopTable("customers"), "INDEX_NAME", "customers_pkey", "NON_UNIQUE", int64(0), "COLUMN_NAME", "id", "ORDINAL_POSITION", int64(1)),
	))
	f.set("foreign_keys", byObject("FKTABLE", record{
		"PKTABLE_SCHEM": "shop", "PKTABLE_NAME": "customers", "PKCOLUMN_NAME": "",
		"FKTABLE_SCHEM": "shop", "FKTABLE_NAME": "orders", "FKCOLUMN_NAME": "customer_id",
		"KEY_SEQ": int64(1), "FK_NAME": "fk_orders_customer", "DELETE_RULE": int64(0), "UPDATE_RULE": "NO ACTION",
	}))
	f.set("table_constraints", byObject("TABLE",
		with(shopTable("orders"), "CONSTRAINT_NAME", "chk_note", "CONSTRAINT_TYPE", "CHECK"),
	))
	f.set("check_constraints", byObject("TABLE",
		record{"TABLE_SCHEM": "shop", "CONSTRAINT_NAME": "chk_note", "CHECK_CLAUSE": "note <> ''"},
	))
	f.set("triggers", byObject("TABLE",
		with(shopTable("orders"), "TRIGGER_NAME", "trg_orders_audit", "EVENT_MANIPULATION", "insert", "ACTION_TIMING", "AFTER"),
		with(shopTable("orders"), "TRIGGER_NAME", "trg_orders_audit", "EVENT_MANIPULATION", "UPDATE", "ACTION_TIMING", "AFTER"),
	))
	f.set("table_privileges", byObject("TABLE",
		with(shopTable("orders"), "PRIVILEGE", "select", "GRANTOR", "admin", "GRANTEE", "app", "IS_GRANTABLE", "NO"),
	))
	f.set("view_definitions", byObject("TABLE",
		with(shopTable("order_totals"), "VIEW_DEFINITION", "SELECT customer_id FROM orders"),
	))
	routine := func(name, specific string) record {
		return record{"ROUTINE_SCHEM": "shop", "ROUTINE_NAME": name, "SPECIFIC_NAME": specific}
	}
	f.set("routines", byObject("ROUTINE",
		with(routine("total", "total_1"), "ROUTINE_TYPE", "FUNCTION", "RETURN_TYPE", "numeric"),
		with(routine("cleanup", ""), "ROUTINE_TYPE", "PROCEDURE"),
	))
	f.set("routine_parameters", byObject("ROUTINE",
		with(routine("total", "total_1"), "COLUMN_NAME", "", "COLUMN_TYPE", int64(5), "ORDINAL_POSITION", int64(0), "TYPE_NAME", "NUMERIC"),
		with(routine("total", "total_1"), "COLUMN_NAME", "cust_id", "COLUMN_TYPE", "IN", "ORDINAL_POSITION", int64(1), "TYPE_NAME", "INTEGER"),
	))
	f.set("routine_definitions", byObject("ROUTINE",
		with(routine("total", "total_1"), "ROUTINE_BODY", "SQL", "ROUTINE_DEFINITION", "SELECT sum(x)"),
	))
	return f
}
