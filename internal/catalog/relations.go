package catalog

import (
	"cmp"
	"slices"
)

// Index is a table index. A table's primary key is also an Index.
type Index struct {
	Unique     bool
	IndexType  string
	PrimaryKey bool
	Attributes map[string]any

	table   *Table
	name    string
	columns []IndexColumn
}

// IndexColumn is one column of an index at its position in the index.
type IndexColumn struct {
	*Column
	Position   int
	Descending bool
}

func (i *Index) Key() Key         { return i.table.key.Child(i.name) }
func (i *Index) FullName() string { return i.table.FullName() + "." + i.name }
func (i *Index) Name() string     { return i.name }
func (i *Index) Table() *Table    { return i.table }

// NewPrimaryKey returns a primary key index for t that is not registered
// among t's indexes.
func NewPrimaryKey(t *Table, name string) *Index {
	return &Index{table: t, name: name, Unique: true, PrimaryKey: true}
}

// AddColumn places col at position. Adding a column already present
// updates its position and direction.
func (i *Index) AddColumn(col *Column, position int, descending bool) {
	for n := range i.columns {
		if i.columns[n].Column == col {
			i.columns[n].Position = position
			i.columns[n].Descending = descending
			i.sortColumns()
			return
		}
	}
	i.columns = append(i.columns, IndexColumn{Column: col, Position: position, Descending: descending})
	i.sortColumns()
}

func (i *Index) sortColumns() {
	slices.SortStableFunc(i.columns, func(a, b IndexColumn) int {
		return cmp.Compare(a.Position, b.Position)
	})
}

// Columns returns the index columns by position.
func (i *Index) Columns() []IndexColumn { return slices.Clone(i.columns) }

// ColumnNames returns the index column names by position.
func (i *Index) ColumnNames() []string {
	names := make([]string, len(i.columns))
	for n, c := range i.columns {
		names[n] = c.Name()
	}
	return names
}

// ConstraintType is the kind of a table constraint.
type ConstraintType string

const (
	ConstraintPrimaryKey ConstraintType = "PRIMARY KEY"
	ConstraintUnique     ConstraintType = "UNIQUE"
	ConstraintCheck      ConstraintType = "CHECK"
	ConstraintForeignKey ConstraintType = "FOREIGN KEY"
	ConstraintUnknown    ConstraintType = "UNKNOWN"
)

// ParseConstraintType maps vendor constraint type names to a ConstraintType.
func ParseConstraintType(s string) ConstraintType {
	switch ConstraintType(normalizeTypeName(s)) {
	case ConstraintPrimaryKey, "P":
		return ConstraintPrimaryKey
	case ConstraintUnique, "U":
		return ConstraintUnique
	case ConstraintCheck, "C":
		return ConstraintCheck
	case ConstraintForeignKey, "R":
		return ConstraintForeignKey
	}
	return ConstraintUnknown
}

// Constraint is a table constraint. Check constraints carry their clause in
// Definition.
type Constraint struct {
	Type              ConstraintType
	Definition        string
	Deferrable        bool
	InitiallyDeferred bool
	Attributes        map[string]any

	table *Table
	name  string
}

func (c *Constraint) Key() Key         { return c.table.key.Child(c.name) }
func (c *Constraint) FullName() string { return c.table.FullName() + "." + c.name }
func (c *Constraint) Name() string     { return c.name }
func (c *Constraint) Table() *Table    { return c.table }

// ColumnReference pairs a referencing column with the column it references.
type ColumnReference struct {
	KeySequence      int
	ForeignKeyColumn *Column
	PrimaryKeyColumn *Column
}

// ForeignKey is a relationship between two tables, shared by both.
type ForeignKey struct {
	UpdateRule    string
	DeleteRule    string
	Deferrability string
	Attributes    map[string]any

	key        Key
	name       string
	references []ColumnReference
}

// NewForeignKey returns an empty foreign key named name, owned by the
// referencing table. Its key carries the table name, so same-named foreign
// keys on different tables stay distinct.
func NewForeignKey(table Key, name string) *ForeignKey {
	return &ForeignKey{key: ForeignKeyKey(table, name), name: name}
}

// ForeignKeyKey returns the key of the foreign key name on table.
func ForeignKeyKey(table Key, name string) Key {
	return Key{Catalog: table.Catalog, Schema: table.Schema, Name: table.Name + "." + name}
}

func (f *ForeignKey) Key() Key         { return f.key }
func (f *ForeignKey) FullName() string { return f.key.FullName() }
func (f *ForeignKey) Name() string     { return f.name }

// AddReference adds a column pair. A pair already present at the same key
// sequence is replaced.
func (f *ForeignKey) AddReference(ref ColumnReference) {
	for n := range f.references {
		if f.references[n].KeySequence == ref.KeySequence {
			f.references[n] = ref
			return
		}
	}
	f.references = append(f.references, ref)
	slices.SortStableFunc(f.references, func(a, b ColumnReference) int {
		return cmp.Compare(a.KeySequence, b.KeySequence)
	})
}

// References returns the column pairs by key sequence.
func (f *ForeignKey) References() []ColumnReference { return slices.Clone(f.references) }

// ReferencingTable is the table holding the foreign key columns.
func (f *ForeignKey) ReferencingTable() *Table {
	if len(f.references) == 0 {
		return nil
	}
	return f.references[0].ForeignKeyColumn.Table()
}

// ReferencedTable is the table holding the primary key columns.
func (f *ForeignKey) ReferencedTable() *Table {
	if len(f.references) == 0 {
		return nil
	}
	return f.references[0].PrimaryKeyColumn.Table()
}

// IsSelfReferencing reports whether both ends are the same table.
func (f *ForeignKey) IsSelfReferencing() bool {
	return len(f.references) > 0 && f.ReferencingTable() == f.ReferencedTable()
}

// Trigger is a table trigger. One trigger can fire on several events.
type Trigger struct {
	EventManipulation []string
	ActionTiming      string
	ActionOrientation string
	ActionOrder       int
	ActionCondition   string
	ActionStatement   string
	Attributes        map[string]any

	table *Table
	name  string
}

func (t *Trigger) Key() Key         { return t.table.key.Child(t.name) }
func (t *Trigger) FullName() string { return t.table.FullName() + "." + t.name }
func (t *Trigger) Name() string     { return t.name }
func (t *Trigger) Table() *Table    { return t.table }

// AddEvent records an event the trigger fires on, once.
func (t *Trigger) AddEvent(event string) {
	if event != "" && !slices.Contains(t.EventManipulation, event) {
		t.EventManipulation = append(t.EventManipulation, event)
	}
}

// Privilege is a named table privilege and its grants.
type Privilege struct {
	table  *Table
	name   string
	grants []Grant
}

// Grant is one grant of a privilege.
type Grant struct {
	Grantor   string
	Grantee   string
	Grantable bool
}

func (p *Privilege) Key() Key         { return p.table.key.Child(p.name) }
func (p *Privilege) FullName() string { return p.table.FullName() + "." + p.name }
func (p *Privilege) Name() string     { return p.name }

// AddGrant records a grant, once per grantor and grantee.
func (p *Privilege) AddGrant(g Grant) {
	for n := range p.grants {
		if p.grants[n].Grantor == g.Grantor && p.grants[n].Grantee == g.Grantee {
			p.grants[n].Grantable = g.Grantable
			return
		}
	}
	p.grants = append(p.grants, g)
}

// Grants returns the grants in first-seen order.
func (p *Privilege) Grants() []Grant { return slices.Clone(p.grants) }
