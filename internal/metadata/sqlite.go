package metadata

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// SQLite is a Source built on SQLite pragmas and sqlite_master. Pragmas
// take one table at a time, so column, key and index calls need a table
// name and fail with ErrUnsupported for wildcard requests.
type SQLite struct {
	Unsupported
	DB Querier
}

// NewSQLite returns a Source for a SQLite database.
func NewSQLite(db Querier) *SQLite {
	return &SQLite{DB: db}
}

func sqliteSchema(o Object) string {
	if o.Schema == "" {
		return "main"
	}
	return o.Schema
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (s *SQLite) perTable(ctx context.Context, call string, o Object, query string, args ...any) (Rows, error) {
	if o.Name == "" {
		return nil, fmt.Errorf("%w: sqlite %s needs a table name", ErrUnsupported, call)
	}
	rows, err := Query(ctx, s.DB, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite %s for %s.%s: %w", call, sqliteSchema(o), o.Name, err)
	}
	return rows, nil
}

func (s *SQLite) Schemas(ctx context.Context) (Rows, error) {
	rows, err := Query(ctx, s.DB, `
        SELECT '' AS TABLE_CAT, name AS TABLE_SCHEM
        FROM pragma_database_list
        WHERE name <> 'temp'
        ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("sqlite schemas: %w", err)
	}
	return rows, nil
}

func (s *SQLite) Tables(ctx context.Context, o Object) (Rows, error) {
	schema := sqliteSchema(o)
	q := fmt.Sprintf(`
        SELECT '' AS TABLE_CAT, ? AS TABLE_SCHEM, name AS TABLE_NAME,
               CASE type WHEN 'view' THEN 'VIEW' ELSE 'TABLE' END AS TABLE_TYPE
        FROM %s.sqlite_master
        WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%%'`, quoteIdent(schema))
	args := []any{schema}
	if o.Name != "" {
		q += " AND name = ?"
		args = append(args, o.Name)
	}
	rows, err := Query(ctx, s.DB, q+" ORDER BY name", args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite tables: %w", err)
	}
	return rows, nil
}

func (s *SQLite) Columns(ctx context.Context, o Object) (Rows, error) {
	schema := sqliteSchema(o)
	return s.perTable(ctx, "columns", o, `
        SELECT '' AS TABLE_CAT, ? AS TABLE_SCHEM, ? AS TABLE_NAME, p.name AS COLUMN_NAME,
               p.cid + 1 AS ORDINAL_POSITION, p.type AS TYPE_NAME,
               CASE p."notnull" WHEN 0 THEN 'YES' ELSE 'NO' END AS IS_NULLABLE,
               p.dflt_value AS COLUMN_DEF
        FROM pragma_table_info(?, ?) p
        ORDER BY p.cid`, schema, o.Name, o.Name, schema)
}

func (s *SQLite) PrimaryKeys(ctx context.Context, o Object) (Rows, error) {
	schema := sqliteSchema(o)
	return s.perTable(ctx, "primary keys", o, `
        SELECT '' AS TABLE_CAT, ? AS TABLE_SCHEM, ? AS TABLE_NAME, p.name AS COLUMN_NAME,
               p.pk AS KEY_SEQ, ? AS PK_NAME
        FROM pragma_table_info(?, ?) p
        WHERE p.pk > 0
        ORDER BY p.pk`, schema, o.Name, "pk_"+o.Name, o.Name, schema)
}

func (s *SQLite) Indexes(ctx context.Context, o Object) (Rows, error) {
	schema := sqliteSchema(o)
	return s.perTable(ctx, "indexes", o, `
        SELECT '' AS TABLE_CAT, ? AS TABLE_SCHEM, ? AS TABLE_NAME, il.name AS INDEX_NAME,
               CASE il."unique" WHEN 1 THEN 0 ELSE 1 END AS NON_UNIQUE,
               ii.name AS COLUMN_NAME, ii.seqno + 1 AS ORDINAL_POSITION, il.origin AS TYPE
        FROM pragma_index_list(?, ?) il, pragma_index_info(il.name, ?) ii
        ORDER BY il.name, ii.seqno`, schema, o.Name, o.Name, schema, schema)
}

func (s *SQLite) ForeignKeys(ctx context.Context, o Object) (Rows, error) {
	schema := sqliteSchema(o)
	return s.perTable(ctx, "foreign keys", o, `
        SELECT '' AS PKTABLE_CAT, ? AS PKTABLE_SCHEM, f."table" AS PKTABLE_NAME, f."to" AS PKCOLUMN_NAME,
               '' AS FKTABLE_CAT, ? AS FKTABLE_SCHEM, ? AS FKTABLE_NAME, f."from" AS FKCOLUMN_NAME,
               f.seq + 1 AS KEY_SEQ, f.on_update AS UPDATE_RULE, f.on_delete AS DELETE_RULE,
               ? || '_fk' || f.id AS FK_NAME
        FROM pragma_foreign_key_list(?, ?) f
        ORDER BY f.id, f.seq`, schema, schema, o.Name, o.Name, o.Name, schema)
}

var sqliteTrigger = regexp.MustCompile(`(?is)^\s*CREATE\s+(?:TEMP\s+|TEMPORARY\s+)?TRIGGER\s+(?:IF\s+NOT\s+EXISTS\s+)?(?:"[^"]+"|\[[^\]]+\]|\S+)\s+(?:(BEFORE|AFTER|INSTEAD\s+OF)\s+)?(INSERT|UPDATE|DELETE)\b`)

// parseTrigger extracts the timing and event of a CREATE TRIGGER statement.
func parseTrigger(sql string) (timing, event string) {
	m := sqliteTrigger.FindStringSubmatch(sql)
	if m == nil {
		return "", ""
	}
	timing = strings.ToUpper(strings.Join(strings.Fields(m[1]), " "))
	if timing == "" {
		timing = "BEFORE"
	}
	return timing, strings.ToUpper(m[2])
}

func (s *SQLite) Triggers(ctx context.Context, o Object) (Rows, error) {
	schema := sqliteSchema(o)
	q := fmt.Sprintf(`
        SELECT '' AS TABLE_CAT, ? AS TABLE_SCHEM, tbl_name AS TABLE_NAME, name AS TRIGGER_NAME,
               sql AS ACTION_STATEMENT
        FROM %s.sqlite_master
        WHERE type = 'trigger'`, quoteIdent(schema))
	args := []any{schema}
	if o.Name != "" {
		q += " AND tbl_name = ?"
		args = append(args, o.Name)
	}
	rows, err := Query(ctx, s.DB, q+" ORDER BY tbl_name, name", args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite triggers: %w", err)
	}
	return Map(rows, func(r *Row) {
		sql, _ := r.values["ACTION_STATEMENT"].(string)
		timing, event := parseTrigger(sql)
		r.Set("ACTION_TIMING", timing)
		r.Set("EVENT_MANIPULATION", event)
		r.Set("ACTION_ORIENTATION", "ROW")
	}), nil
}

func (s *SQLite) ViewDefinitions(ctx context.Context, o Object) (Rows, error) {
	schema := sqliteSchema(o)
	q := fmt.Sprintf(`
        SELECT '' AS TABLE_CAT, ? AS TABLE_SCHEM, name AS TABLE_NAME, sql AS VIEW_DEFINITION
        FROM %s.sqlite_master
        WHERE type = 'view'`, quoteIdent(schema))
	args := []any{schema}
	if o.Name != "" {
		q += " AND name = ?"
		args = append(args, o.Name)
	}
	rows, err := Query(ctx, s.DB, q+" ORDER BY name", args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite view definitions: %w", err)
	}
	return rows, nil
}
