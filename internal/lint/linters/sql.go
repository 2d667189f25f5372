package linters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/lint"
)

var EmptyTable = lint.RuleDef{
	ID:              "empty-table",
	Description:     "Tables without rows.",
	Severity:        lint.SeverityMedium,
	NeedsConnection: true,
	Check: func(ctx context.Context, r *lint.Run) error {
		var errs []error
		for _, t := range r.Tables() {
			if t.IsView() {
				continue
			}
			v, err := queryValue(ctx, r, "SELECT COUNT(*) FROM "+quotedTableName(r.Catalog.Info.Dialect, t))
			if err != nil {
				errs = append(errs, fmt.Errorf("count rows of %s: %w", t.FullName(), err))
				continue
			}
			if v == "0" {
				r.Report(t, "empty table", nil)
			}
		}
		return errors.Join(errs...)
	},
}

var TableSQL = lint.RuleDef{
	ID:              "table-sql",
	Description:     "Runs a configured query per table and reports tables for which it returns a value.",
	Severity:        lint.SeverityMedium,
	ConfigKeys:      []string{"sql", "message"},
	NeedsConnection: true,
	OptIn:           true,
	Check: func(ctx context.Context, r *lint.Run) error {
		query := r.StringOption("sql", "")
		if strings.TrimSpace(query) == "" {
			return errors.New("no sql configured")
		}
		message := r.StringOption("message", "SQL statement based lint")
		var errs []error
		for _, t := range r.Tables() {
			v, err := queryValue(ctx, r, expandTable(query, r.Catalog.Info.Dialect, t))
			if err != nil {
				errs = append(errs, fmt.Errorf("query %s: %w", t.FullName(), err))
				continue
			}
			if v != "" {
				r.Report(t, message, v)
			}
		}
		return errors.Join(errs...)
	},
}

// expandTable substitutes ${table} in query with t's quoted name.
func expandTable(query, dialect string, t *catalog.Table) string {
	return strings.ReplaceAll(query, "${table}", quotedTableName(dialect, t))
}

// queryValue returns the first column of the first row as text, or "" for
// no rows or a NULL.
func queryValue(ctx context.Context, r *lint.Run, query string) (string, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return "", err
	}
	defer rows.Close()
	var v sql.NullString
	if rows.Next() {
		if err := rows.Scan(&v); err != nil {
			return "", err
		}
	}
	return v.String, rows.Err()
}
