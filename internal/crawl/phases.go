package crawl

import (
	"context"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/filter"
	"dbcatalog/internal/metadata"
)

// sourceCall has the shape of a Source method expression such as
// metadata.Source.Tables.
type sourceCall func(src metadata.Source, ctx context.Context, o metadata.Object) (metadata.Rows, error)

// phase binds a category to its Source call, the parents a per-object
// retrieval iterates, the rules whose exclude-all fast path skips it and
// the builder function that merges its rows.
type phase struct {
	category Category
	call     sourceCall
	parents  func() []metadata.Object
	rules    []filter.Rule
	merge    func(*metadata.Row) verdict
}

func schemaObjects(cat *catalog.Catalog) func() []metadata.Object {
	return func() []metadata.Object {
		var out []metadata.Object
		for _, s := range cat.Schemas() {
			k := s.Key()
			out = append(out, metadata.Object{Catalog: k.Catalog, Schema: k.Schema})
		}
		return out
	}
}

func tableObjects(cat *catalog.Catalog, viewsOnly bool) func() []metadata.Object {
	return func() []metadata.Object {
		var out []metadata.Object
		for _, t := range cat.AllTables() {
			if viewsOnly && !t.IsView() {
				continue
			}
			k := t.Key()
			out = append(out, metadata.Object{Catalog: k.Catalog, Schema: k.Schema, Name: k.Name})
		}
		return out
	}
}

func routineObjects(cat *catalog.Catalog) func() []metadata.Object {
	return func() []metadata.Object {
		var out []metadata.Object
		for _, r := range cat.AllRoutines() {
			k := r.Key()
			out = append(out, metadata.Object{Catalog: k.Catalog, Schema: k.Schema, Name: k.Name, Specific: k.Specific})
		}
		return out
	}
}

func (b *builder) phases() []*phase {
	l := b.limits
	schemas := schemaObjects(b.cat)
	tables := tableObjects(b.cat, false)
	routines := routineObjects(b.cat)
	tableRules := []filter.Rule{l.Schemas, l.Tables}
	routineRules := []filter.Rule{l.Schemas, l.Routines}

	phases := []*phase{
		{
			category: Schemas,
			call: func(src metadata.Source, ctx context.Context, _ metadata.Object) (metadata.Rows, error) {
				return src.Schemas(ctx)
			},
			rules: []filter.Rule{l.Schemas},
			merge: b.schema,
		},
		{category: Tables, call: metadata.Source.Tables, parents: schemas, rules: tableRules, merge: b.table},
		{category: Routines, call: metadata.Source.Routines, parents: schemas, rules: routineRules, merge: b.routine},
		{category: TableColumns, call: metadata.Source.Columns, parents: tables,
			rules: []filter.Rule{l.Schemas, l.Tables, l.Columns}, merge: b.column},
		{category: RoutineParameters, call: metadata.Source.RoutineParameters, parents: routines,
			rules: []filter.Rule{l.Schemas, l.Routines, l.Parameters}, merge: b.parameter},
		{category: PrimaryKeys, call: metadata.Source.PrimaryKeys, parents: tables, rules: tableRules, merge: b.primaryKey},
		{category: Indexes, call: metadata.Source.Indexes, parents: tables, rules: tableRules, merge: b.index},
		{category: ForeignKeys, call: metadata.Source.ForeignKeys, parents: tables, rules: tableRules, merge: b.foreignKey},
		{category: TableConstraints, call: metadata.Source.TableConstraints, parents: tables, rules: tableRules, merge: b.tableConstraint},
		{category: CheckConstraints, call: metadata.Source.CheckConstraints, parents: schemas, rules: tableRules, merge: b.checkConstraint},
		{category: Triggers, call: metadata.Source.Triggers, parents: tables, rules: tableRules, merge: b.trigger},
		{category: TablePrivileges, call: metadata.Source.TablePrivileges, parents: tables, rules: tableRules, merge: b.privilege},
		{category: ViewDefinitions, call: metadata.Source.ViewDefinitions, parents: tableObjects(b.cat, true),
			rules: tableRules, merge: b.viewDefinition},
		{category: RoutineDefinitions, call: metadata.Source.RoutineDefinitions, parents: routines,
			rules: routineRules, merge: b.routineDefinition},
	}
	for _, p := range phases {
		p.merge = b.guard(p.merge)
	}
	return phases
}

// excluded reports whether an exclude-all rule makes the phase pointless.
func (p *phase) excluded() bool {
	for _, r := range p.rules {
		if filter.IsExcludeAll(r) {
			return true
		}
	}
	return false
}
