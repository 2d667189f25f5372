package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		full string
		str  string
	}{
		{"all parts", Key{Catalog: "PUBLIC", Schema: "BOOKS", Name: "AUTHORS"}, "PUBLIC.BOOKS.AUTHORS", "PUBLIC.BOOKS.AUTHORS"},
		{"no catalog", Key{Schema: "main", Name: "books"}, "main.books", "main.books"},
		{"schema only", Key{Schema: "main"}, "main", "main"},
		{"overload", Key{Schema: "S", Name: "F", Specific: "F_2"}, "S.F", "S.F/F_2"},
		{"specific same as name", Key{Schema: "S", Name: "F", Specific: "F"}, "S.F", "S.F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.full, tt.key.FullName())
			assert.Equal(t, tt.str, tt.key.String())
		})
	}

	a := Key{Schema: "A", Name: "Z"}
	b := Key{Schema: "B", Name: "A"}
	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
	assert.Zero(t, a.Compare(a))
	assert.Negative(t, Key{Schema: "S", Name: "F", Specific: "1"}.Compare(Key{Schema: "S", Name: "F", Specific: "2"}))
	assert.True(t, Key{}.IsZero())
	assert.Equal(t, Key{Catalog: "C", Schema: "S"}, Key{Catalog: "C", Schema: "S", Name: "T"}.SchemaKey())
}

func TestNamedListResolve(t *testing.T) {
	cat := New("c", false)
	s, created := cat.ResolveSchema(Key{Schema: "S"})
	require.True(t, created)

	first, created := s.ResolveTable("T", KindTable)
	require.True(t, created)
	again, created := s.ResolveTable("T", KindView)
	assert.False(t, created)
	assert.Same(t, first, again)
	assert.Equal(t, KindTable, again.Kind)
	assert.Len(t, s.Tables(), 1)

	same, created := cat.ResolveSchema(Key{Schema: "S", Name: "ignored"})
	assert.False(t, created)
	assert.Same(t, s, same)
}

func TestTableOrder(t *testing.T) {
	for _, natural := range []bool{false, true} {
		cat := New("c", natural)
		s, _ := cat.ResolveSchema(Key{Schema: "S"})
		for _, n := range []string{"ZEBRA", "APPLE", "MANGO"} {
			s.ResolveTable(n, KindTable)
		}
		var names []string
		for _, tbl := range cat.AllTables() {
			names = append(names, tbl.Name())
		}
		if natural {
			assert.Equal(t, []string{"ZEBRA", "APPLE", "MANGO"}, names)
		} else {
			assert.Equal(t, []string{"APPLE", "MANGO", "ZEBRA"}, names)
		}
	}
}

func TestLifecycle(t *testing.T) {
	cat := New("c", false)
	assert.Equal(t, StateEmpty, cat.State())
	require.NoError(t, cat.BeginPopulating())
	assert.Equal(t, StatePopulating, cat.State())
	require.NoError(t, cat.BeginPopulating())

	cat.Freeze()
	assert.Equal(t, StateFrozen, cat.State())
	assert.ErrorIs(t, cat.BeginPopulating(), ErrFrozen)
	cat.Freeze()
	assert.Equal(t, "frozen", cat.State().String())
	assert.NotEqual(t, New("c", false).Info.ID, cat.Info.ID)
}

func TestFrozenRefusesMerges(t *testing.T) {
	cat := lookupCatalog(t)
	require.ErrorIs(t, cat.CheckMutable(), ErrFrozen)

	s, created := cat.ResolveSchema(Key{Catalog: "PUBLIC", Schema: "NEW"})
	assert.Nil(t, s)
	assert.False(t, created)
	assert.Len(t, cat.Schemas(), 2)

	shop, created := cat.ResolveSchema(Key{Catalog: "PUBLIC", Schema: "SHOP"})
	require.NotNil(t, shop)
	assert.False(t, created)

	tbl, created := shop.ResolveTable("BOOKS", KindTable)
	assert.Nil(t, tbl)
	assert.False(t, created)
	authors, _ := shop.ResolveTable("AUTHORS", KindTable)
	require.NotNil(t, authors)

	col, _ := authors.ResolveColumn("NAME")
	assert.Nil(t, col)
	idx, _ := authors.ResolveIndex("AUTHORS_IDX")
	assert.Nil(t, idx)
	authors.AttachForeignKey(NewForeignKey(authors.Key(), "FK"))
	r, _ := shop.ResolveRoutine("COUNT", "", KindFunction)
	assert.Nil(t, r)
	assert.Nil(t, shop.ResolveDataType(TypeInteger, "INTEGER"))

	assert.Len(t, cat.AllTables(), 2)
	assert.Len(t, authors.Columns(), 1)
	assert.Empty(t, authors.Indexes())
	assert.Empty(t, authors.ForeignKeys())
	assert.Len(t, cat.AllRoutines(), 2)
	assert.Empty(t, shop.DataTypes())

	assert.NoError(t, New("c", false).CheckMutable())
}

func lookupCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat := New("c", false)
	for _, schema := range []string{"BOOKS", "SHOP"} {
		s, _ := cat.ResolveSchema(Key{Catalog: "PUBLIC", Schema: schema})
		tbl, _ := s.ResolveTable("AUTHORS", KindTable)
		c, _ := tbl.ResolveColumn("ID")
		c.Ordinal = 1
		c.Remarks = schema
	}
	s, _ := cat.ResolveSchema(Key{Catalog: "PUBLIC", Schema: "SHOP"})
	s.ResolveRoutine("TOTAL", "TOTAL_1", KindFunction)
	s.ResolveRoutine("TOTAL", "TOTAL_2", KindFunction)
	cat.Freeze()
	return cat
}

func TestLookup(t *testing.T) {
	cat := lookupCatalog(t)

	s, ok := cat.LookupSchema("PUBLIC.SHOP")
	require.True(t, ok)
	assert.Equal(t, "SHOP", s.Name())
	_, ok = cat.LookupSchema("SHOP")
	assert.True(t, ok)

	tbl, ok := cat.LookupTable("PUBLIC.SHOP.AUTHORS")
	require.True(t, ok)
	assert.Equal(t, "SHOP", tbl.Schema().Name())
	tbl, ok = cat.LookupTable("AUTHORS")
	require.True(t, ok)
	assert.Equal(t, "BOOKS", tbl.Schema().Name())
	_, ok = cat.LookupTable("PUBLIC.NONE.AUTHORS")
	assert.False(t, ok)

	c, ok := cat.LookupColumn("PUBLIC.SHOP.AUTHORS.ID")
	require.True(t, ok)
	assert.Equal(t, "SHOP", c.Remarks)
	c, ok = cat.LookupColumn("AUTHORS.ID")
	require.True(t, ok)
	assert.Equal(t, "BOOKS", c.Remarks)
	_, ok = cat.LookupColumn("ID")
	assert.False(t, ok)

	r, ok := cat.LookupRoutine("PUBLIC.SHOP.TOTAL")
	require.True(t, ok)
	assert.Equal(t, "TOTAL_1", r.SpecificName())
	r, ok = cat.Routine(Key{Catalog: "PUBLIC", Schema: "SHOP", Name: "TOTAL", Specific: "TOTAL_2"})
	require.True(t, ok)
	assert.Equal(t, "TOTAL_2", r.SpecificName())
	assert.Len(t, cat.AllRoutines(), 2)

	tbl, ok = cat.Table(Key{Catalog: "PUBLIC", Schema: "BOOKS", Name: "AUTHORS"})
	require.True(t, ok)
	assert.Equal(t, "PUBLIC.BOOKS.AUTHORS", tbl.FullName())
	assert.Equal(t, "PUBLIC.BOOKS.AUTHORS.ID", tbl.Columns()[0].FullName())
}

func TestRelations(t *testing.T) {
	cat := New("c", false)
	s, _ := cat.ResolveSchema(Key{Schema: "S"})
	parent, _ := s.ResolveTable("PARENT", KindTable)
	child, _ := s.ResolveTable("CHILD", KindTable)
	pid, _ := parent.ResolveColumn("ID")
	a, _ := child.ResolveColumn("A")
	b, _ := child.ResolveColumn("B")

	idx, _ := child.ResolveIndex("IDX")
	idx.AddColumn(b, 2, false)
	idx.AddColumn(a, 1, true)
	assert.Equal(t, []string{"A", "B"}, idx.ColumnNames())
	idx.AddColumn(a, 3, false)
	assert.Equal(t, []string{"B", "A"}, idx.ColumnNames())
	assert.False(t, idx.Columns()[1].Descending)

	fk := NewForeignKey(child.Key(), "FK")
	assert.Nil(t, fk.ReferencingTable())
	fk.AddReference(ColumnReference{KeySequence: 1, ForeignKeyColumn: a, PrimaryKeyColumn: pid})
	child.AttachForeignKey(fk)
	parent.AttachForeignKey(fk)
	child.AttachForeignKey(fk)

	assert.Len(t, child.ForeignKeys(), 1)
	assert.Equal(t, []*ForeignKey{fk}, child.ImportedForeignKeys())
	assert.Empty(t, child.ExportedForeignKeys())
	assert.Equal(t, []*ForeignKey{fk}, parent.ExportedForeignKeys())
	assert.Empty(t, parent.ImportedForeignKeys())
	assert.False(t, fk.IsSelfReferencing())
	assert.Equal(t, "S.CHILD.FK", fk.FullName())
	assert.Equal(t, "FK", fk.Name())

	fk.AddReference(ColumnReference{KeySequence: 1, ForeignKeyColumn: b, PrimaryKeyColumn: pid})
	require.Len(t, fk.References(), 1)
	assert.Equal(t, "B", fk.References()[0].ForeignKeyColumn.Name())
}

func TestDataTypes(t *testing.T) {
	cat := New("c", false)
	s, _ := cat.ResolveSchema(Key{Schema: "S"})
	v1 := s.ResolveDataType(TypeVarChar, "VARCHAR")
	v2 := s.ResolveDataType(TypeVarChar, "VARCHAR")
	assert.Same(t, v1, v2)
	assert.Len(t, s.DataTypes(), 1)

	assert.True(t, s.ResolveDataType(TypeClob, "CLOB").IsLargeObject())
	assert.True(t, s.ResolveDataType(TypeOther, "bytea").IsLargeObject())
	assert.False(t, v1.IsLargeObject())
	assert.Equal(t, TypeVarChar, TypeCode("character varying(20)"))
	assert.Equal(t, TypeOther, TypeCode("GEOMETRY"))

	var none *DataType
	assert.False(t, none.IsLargeObject())
}

func TestRoutineParameters(t *testing.T) {
	cat := New("c", false)
	s, _ := cat.ResolveSchema(Key{Schema: "S"})
	r, _ := s.ResolveRoutine("F", "", KindFunction)
	assert.True(t, r.IsFunction())
	assert.Equal(t, "F", r.SpecificName())

	b, _ := r.ResolveParameter("B")
	b.Ordinal = 2
	a, _ := r.ResolveParameter("A")
	a.Ordinal = 1
	ps := r.Parameters()
	require.Len(t, ps, 2)
	assert.Equal(t, "A", ps[0].Name())
	assert.Equal(t, "S.F.B", b.FullName())

	assert.Equal(t, ModeInOut, ParseParameterMode("INOUT"))
	assert.Equal(t, KindFunction, ParseRoutineKind(" function "))
	assert.Equal(t, KindProcedure, ParseRoutineKind("PROCEDURE"))
}
