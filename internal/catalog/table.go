package catalog

import (
	"cmp"
	"slices"
)

// TableKind tags the Table variant.
type TableKind int

const (
	KindTable TableKind = iota
	KindView
)

func (k TableKind) String() string {
	if k == KindView {
		return "view"
	}
	return "table"
}

// ViewInfo is the view-only part of a Table.
type ViewInfo struct {
	Definition  string
	CheckOption string
	Updatable   bool
}

// Table is a table or view together with everything it contains.
type Table struct {
	Kind       TableKind
	TableType  string
	Remarks    string
	View       *ViewInfo
	PrimaryKey *Index
	Attributes map[string]any

	schema      *Schema
	key         Key
	columns     NamedList[*Column]
	indexes     NamedList[*Index]
	constraints NamedList[*Constraint]
	foreignKeys NamedList[*ForeignKey]
	triggers    NamedList[*Trigger]
	privileges  NamedList[*Privilege]
}

func (t *Table) Key() Key         { return t.key }
func (t *Table) FullName() string { return t.key.FullName() }
func (t *Table) Name() string     { return t.key.Name }
func (t *Table) Schema() *Schema  { return t.schema }

// IsView reports whether the table is the view variant.
func (t *Table) IsView() bool { return t.Kind == KindView }

// ResolveColumn returns the named column, creating it on first reference.
func (t *Table) ResolveColumn(name string) (*Column, bool) {
	key := t.key.Child(name)
	return resolveIn(t.schema.Catalog(), &t.columns, key, func() *Column {
		return &Column{table: t, name: name}
	})
}

// Columns returns the columns by ordinal position, ties in first-seen order.
func (t *Table) Columns() []*Column {
	cols := t.columns.All()
	slices.SortStableFunc(cols, func(a, b *Column) int {
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})
	return cols
}

// LookupColumn finds a column by name.
func (t *Table) LookupColumn(name string) (*Column, bool) {
	return t.columns.Lookup(t.key.Child(name))
}

// ResolveIndex returns the named index, creating it on first reference.
func (t *Table) ResolveIndex(name string) (*Index, bool) {
	key := t.key.Child(name)
	return resolveIn(t.schema.Catalog(), &t.indexes, key, func() *Index {
		return &Index{table: t, name: name}
	})
}

// Indexes returns the table's indexes in first-seen order.
func (t *Table) Indexes() []*Index { return t.indexes.All() }

// LookupIndex finds an index by name.
func (t *Table) LookupIndex(name string) (*Index, bool) {
	return t.indexes.Lookup(t.key.Child(name))
}

// ResolveConstraint returns the named constraint, creating it on first reference.
func (t *Table) ResolveConstraint(name string) (*Constraint, bool) {
	key := t.key.Child(name)
	return resolveIn(t.schema.Catalog(), &t.constraints, key, func() *Constraint {
		return &Constraint{table: t, name: name}
	})
}

// Constraints returns the table's constraints in first-seen order.
func (t *Table) Constraints() []*Constraint { return t.constraints.All() }

// CheckConstraints returns only the check constraints.
func (t *Table) CheckConstraints() []*Constraint {
	var out []*Constraint
	for _, c := range t.constraints.All() {
		if c.Type == ConstraintCheck {
			out = append(out, c)
		}
	}
	return out
}

// AttachForeignKey adds a foreign key shared with the other table of the
// relationship. Attaching the same key twice is a no-op.
func (t *Table) AttachForeignKey(fk *ForeignKey) {
	resolveIn(t.schema.Catalog(), &t.foreignKeys, fk.key, func() *ForeignKey { return fk })
}

// ForeignKeys returns imported and exported foreign keys in first-seen order.
func (t *Table) ForeignKeys() []*ForeignKey { return t.foreignKeys.All() }

// ImportedForeignKeys returns the foreign keys whose referencing columns
// belong to t.
func (t *Table) ImportedForeignKeys() []*ForeignKey {
	var out []*ForeignKey
	for _, fk := range t.foreignKeys.All() {
		if fk.ReferencingTable() == t {
			out = append(out, fk)
		}
	}
	return out
}

// ExportedForeignKeys returns the foreign keys that reference t.
func (t *Table) ExportedForeignKeys() []*ForeignKey {
	var out []*ForeignKey
	for _, fk := range t.foreignKeys.All() {
		if fk.ReferencedTable() == t {
			out = append(out, fk)
		}
	}
	return out
}

// ResolveTrigger returns the named trigger, creating it on first reference.
func (t *Table) ResolveTrigger(name string) (*Trigger, bool) {
	key := t.key.Child(name)
	return resolveIn(t.schema.Catalog(), &t.triggers, key, func() *Trigger {
		return &Trigger{table: t, name: name}
	})
}

// Triggers returns the table's triggers in first-seen order.
func (t *Table) Triggers() []*Trigger { return t.triggers.All() }

// ResolvePrivilege returns the named privilege, creating it on first reference.
func (t *Table) ResolvePrivilege(name string) (*Privilege, bool) {
	key := t.key.Child(name)
	return resolveIn(t.schema.Catalog(), &t.privileges, key, func() *Privilege {
		return &Privilege{table: t, name: name}
	})
}

// Privileges returns the table's privileges in first-seen order.
func (t *Table) Privileges() []*Privilege { return t.privileges.All() }

// Column is a table column.
type Column struct {
	Ordinal         int
	Type            *DataType
	Size            int
	DecimalDigits   int
	Nullable        bool
	Default         string
	Remarks         string
	AutoIncremented bool
	Generated       bool
	Attributes      map[string]any

	PartOfPrimaryKey  bool
	PartOfForeignKey  bool
	PartOfIndex       bool
	PartOfUniqueIndex bool
	// Referenced is the primary key column this column points at, if any.
	Referenced *Column

	table *Table
	name  string
}

func (c *Column) Key() Key         { return c.table.key.Child(c.name) }
func (c *Column) FullName() string { return c.table.FullName() + "." + c.name }
func (c *Column) Name() string     { return c.name }
func (c *Column) Table() *Table    { return c.table }

// TypeName returns the column's data type name, or "" when unknown.
func (c *Column) TypeName() string {
	if c.Type == nil {
		return ""
	}
	return c.Type.Name
}
