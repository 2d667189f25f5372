// Package metadata is the vendor-neutral access surface a crawl reads from.
// A Source answers one call per metadata category and returns rows with
// well-known upper-case column names, whatever the database.
package metadata

import (
	"context"
	"database/sql"
	"errors"
)

// ErrUnsupported is returned by a Source that cannot answer a call at all,
// or cannot answer it for every object at once.
var ErrUnsupported = errors.New("metadata call not supported")

// Querier is the part of *sql.DB a Source and the lint rules need.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Object selects what a metadata call returns. The zero Object asks for
// every object in the database. Schema without Name asks for every object
// in that schema.
type Object struct {
	Catalog  string
	Schema   string
	Name     string
	Specific string
}

// All asks for every object.
var All = Object{}

// IsAll reports whether o is the wildcard request.
func (o Object) IsAll() bool {
	return o.Schema == "" && o.Name == ""
}

// Source answers metadata calls. Implementations return ErrUnsupported,
// possibly wrapped, for calls they cannot serve.
//
// Row columns per call:
//
//	Schemas             TABLE_CAT, TABLE_SCHEM, REMARKS
//	Tables              TABLE_CAT, TABLE_SCHEM, TABLE_NAME, TABLE_TYPE, REMARKS
//	Columns             TABLE_CAT, TABLE_SCHEM, TABLE_NAME, COLUMN_NAME, ORDINAL_POSITION,
//	                    DATA_TYPE, TYPE_NAME, COLUMN_SIZE, DECIMAL_DIGITS, IS_NULLABLE,
//	                    COLUMN_DEF, REMARKS, IS_AUTOINCREMENT, IS_GENERATEDCOLUMN
//	PrimaryKeys         TABLE_CAT, TABLE_SCHEM, TABLE_NAME, COLUMN_NAME, KEY_SEQ, PK_NAME
//	Indexes             TABLE_CAT, TABLE_SCHEM, TABLE_NAME, INDEX_NAME, NON_UNIQUE,
//	                    COLUMN_NAME, ORDINAL_POSITION, ASC_OR_DESC, TYPE
//	ForeignKeys         PKTABLE_CAT, PKTABLE_SCHEM, PKTABLE_NAME, PKCOLUMN_NAME,
//	                    FKTABLE_CAT, FKTABLE_SCHEM, FKTABLE_NAME, FKCOLUMN_NAME,
//	                    KEY_SEQ, UPDATE_RULE, DELETE_RULE, FK_NAME, DEFERRABILITY
//	TableConstraints    TABLE_CAT, TABLE_SCHEM, TABLE_NAME, CONSTRAINT_NAME,
//	                    CONSTRAINT_TYPE, IS_DEFERRABLE, INITIALLY_DEFERRED
//	CheckConstraints    TABLE_CAT, TABLE_SCHEM, CONSTRAINT_NAME, CHECK_CLAUSE
//	Triggers            TABLE_CAT, TABLE_SCHEM, TABLE_NAME, TRIGGER_NAME, EVENT_MANIPULATION,
//	                    ACTION_TIMING, ACTION_ORIENTATION, ACTION_ORDER, ACTION_CONDITION,
//	                    ACTION_STATEMENT
//	TablePrivileges     TABLE_CAT, TABLE_SCHEM, TABLE_NAME, GRANTOR, GRANTEE, PRIVILEGE,
//	                    IS_GRANTABLE
//	ViewDefinitions     TABLE_CAT, TABLE_SCHEM, TABLE_NAME, VIEW_DEFINITION, CHECK_OPTION,
//	                    IS_UPDATABLE
//	Routines            ROUTINE_CAT, ROUTINE_SCHEM, ROUTINE_NAME, SPECIFIC_NAME,
//	                    ROUTINE_TYPE, RETURN_TYPE, REMARKS
//	RoutineParameters   ROUTINE_CAT, ROUTINE_SCHEM, ROUTINE_NAME, SPECIFIC_NAME,
//	                    COLUMN_NAME, COLUMN_TYPE, ORDINAL_POSITION, DATA_TYPE, TYPE_NAME,
//	                    LENGTH, SCALE, NULLABLE, REMARKS
//	RoutineDefinitions  ROUTINE_CAT, ROUTINE_SCHEM, ROUTINE_NAME, SPECIFIC_NAME,
//	                    ROUTINE_BODY, ROUTINE_DEFINITION
type Source interface {
	Schemas(ctx context.Context) (Rows, error)
	Tables(ctx context.Context, o Object) (Rows, error)
	Columns(ctx context.Context, o Object) (Rows, error)
	PrimaryKeys(ctx context.Context, o Object) (Rows, error)
	Indexes(ctx context.Context, o Object) (Rows, error)
	ForeignKeys(ctx context.Context, o Object) (Rows, error)
	TableConstraints(ctx context.Context, o Object) (Rows, error)
	CheckConstraints(ctx context.Context, o Object) (Rows, error)
	Triggers(ctx context.Context, o Object) (Rows, error)
	TablePrivileges(ctx context.Context, o Object) (Rows, error)
	ViewDefinitions(ctx context.Context, o Object) (Rows, error)
	Routines(ctx context.Context, o Object) (Rows, error)
	RoutineParameters(ctx context.Context, o Object) (Rows, error)
	RoutineDefinitions(ctx context.Context, o Object) (Rows, error)
}

// Unsupported answers every call with ErrUnsupported. Embed it to implement
// only the calls a database can serve.
type Unsupported struct{}

func (Unsupported) Schemas(context.Context) (Rows, error) { return nil, ErrUnsupported }
func (Unsupported) Tables(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}
func (Unsupported) Columns(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}
func (Unsupported) PrimaryKeys(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}
func (Unsupported) Indexes(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}
func (Unsupported) ForeignKeys(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}
func (Unsupported) TableConstraints(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}
func (Unsupported) CheckConstraints(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}
func (Unsupported) Triggers(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}
func (Unsupported) TablePrivileges(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}
func (Unsupported) ViewDefinitions(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}
func (Unsupported) Routines(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}
func (Unsupported) RoutineParameters(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}
func (Unsupported) RoutineDefinitions(context.Context, Object) (Rows, error) {
	return nil, ErrUnsupported
}

// Query runs a vendor query and adapts the result.
func Query(ctx context.Context, db Querier, query string, args ...any) (Rows, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return FromSQL(rows, nil)
}
