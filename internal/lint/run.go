package lint

import (
	"fmt"
	"strings"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/filter"
	"dbcatalog/internal/metadata"
)

// Run is what one linter instance sees while it checks a catalog. It is
// not shared between instances.
type Run struct {
	Catalog *catalog.Catalog
	// DB is nil when linting without a connection.
	DB metadata.Querier

	inst  *instance
	lints []Lint
}

// ID returns the linter id.
func (r *Run) ID() string { return r.inst.def.ID }

// Severity returns the severity lints of this instance are reported at.
func (r *Run) Severity() Severity { return r.inst.severity }

func (r *Run) IntOption(key string, defaultVal int) int {
	return GetIntOption(r.inst.options, key, defaultVal)
}

func (r *Run) StringOption(key string, defaultVal string) string {
	return GetStringOption(r.inst.options, key, defaultVal)
}

func (r *Run) BoolOption(key string, defaultVal bool) bool {
	return GetBoolOption(r.inst.options, key, defaultVal)
}

// Tables returns the catalog's tables that pass the instance's table
// patterns.
func (r *Run) Tables() []*catalog.Table {
	var out []*catalog.Table
	for _, t := range r.Catalog.AllTables() {
		if r.inst.tables.Test(t.FullName()) {
			out = append(out, t)
		}
	}
	return out
}

// Columns returns t's columns that pass the instance's column patterns.
func (r *Run) Columns(t *catalog.Table) []*catalog.Column {
	var out []*catalog.Column
	for _, c := range t.Columns() {
		if r.inst.columns.Test(c.FullName()) {
			out = append(out, c)
		}
	}
	return out
}

// Report records a lint against target. Value may be nil, a string, a
// string slice or anything fmt can print.
func (r *Run) Report(target catalog.Named, message string, value any) {
	r.add(kindOf(target), target.FullName(), message, value)
}

// ReportCatalog records a lint against the catalog as a whole.
func (r *Run) ReportCatalog(message string, value any) {
	r.add(KindCatalog, r.Catalog.Name, message, value)
}

func (r *Run) add(kind, target, message string, value any) {
	if r.inst.severity < r.inst.threshold {
		return
	}
	r.lints = append(r.lints, Lint{
		ID:       r.inst.def.ID,
		Kind:     kind,
		Target:   target,
		Severity: r.inst.severity,
		Message:  message,
		Value:    formatValue(value),
	})
}

func kindOf(target catalog.Named) string {
	switch target.(type) {
	case *catalog.Table:
		return KindTable
	case *catalog.Column:
		return KindColumn
	case *catalog.Index:
		return KindIndex
	case *catalog.ForeignKey:
		return KindForeignKey
	case *catalog.Schema:
		return KindSchema
	case *catalog.Routine:
		return KindRoutine
	}
	return fmt.Sprintf("%T", target)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}

// instance is a configured linter.
type instance struct {
	def       RuleDef
	severity  Severity
	threshold Severity
	tables    filter.Rule
	columns   filter.Rule
	options   map[string]any
}
