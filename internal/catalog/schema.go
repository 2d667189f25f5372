package catalog

import "strconv"

// Schema owns tables, routines and the data types they reference.
type Schema struct {
	Remarks    string
	Attributes map[string]any

	catalog   *Catalog
	key       Key
	tables    NamedList[*Table]
	routines  NamedList[*Routine]
	dataTypes NamedList[*DataType]
}

func (s *Schema) Key() Key         { return s.key }
func (s *Schema) FullName() string { return s.key.FullName() }
func (s *Schema) Name() string     { return s.key.Schema }

// Catalog returns the owning catalog.
func (s *Schema) Catalog() *Catalog { return s.catalog }

// ResolveTable returns the named table, creating it with kind on first
// reference. The kind of an existing table is left alone.
func (s *Schema) ResolveTable(name string, kind TableKind) (*Table, bool) {
	key := s.key.Child(name)
	return resolveIn(s.catalog, &s.tables, key, func() *Table {
		return &Table{schema: s, key: key, Kind: kind}
	})
}

// Tables returns the schema's tables, by name unless the catalog keeps
// natural order.
func (s *Schema) Tables() []*Table {
	if s.catalog != nil && s.catalog.naturalOrder {
		return s.tables.All()
	}
	return s.tables.Sorted()
}

// LookupTable finds a table by name.
func (s *Schema) LookupTable(name string) (*Table, bool) {
	return s.tables.LookupName(name)
}

func routineKey(schema Key, name, specific string) Key {
	if specific == "" {
		specific = name
	}
	k := schema.Child(name)
	k.Specific = specific
	return k
}

// ResolveRoutine returns the routine identified by name and specific name,
// creating it with kind on first reference.
func (s *Schema) ResolveRoutine(name, specific string, kind RoutineKind) (*Routine, bool) {
	key := routineKey(s.key, name, specific)
	return resolveIn(s.catalog, &s.routines, key, func() *Routine {
		return &Routine{schema: s, key: key, Kind: kind}
	})
}

// Routine finds a routine by name and specific name.
func (s *Schema) Routine(name, specific string) (*Routine, bool) {
	return s.routines.Lookup(routineKey(s.key, name, specific))
}

// Routines returns the schema's routines ordered by name.
func (s *Schema) Routines() []*Routine {
	return s.routines.Sorted()
}

// LookupRoutine finds a routine by name. Overloads resolve to the first seen.
func (s *Schema) LookupRoutine(name string) (*Routine, bool) {
	return s.routines.LookupName(name)
}

// ResolveDataType interns a data type by vendor code and name. A frozen
// catalog returns nil for a type it does not hold.
func (s *Schema) ResolveDataType(code int, name string) *DataType {
	key := s.key.Child(name)
	key.Specific = strconv.Itoa(code)
	dt, _ := resolveIn(s.catalog, &s.dataTypes, key, func() *DataType {
		return &DataType{schema: s, key: key, Code: code, Name: name}
	})
	return dt
}

// DataTypes returns the interned types in first-seen order.
func (s *Schema) DataTypes() []*DataType {
	return s.dataTypes.All()
}

// DataType is a vendor type shared by every column and parameter using it.
type DataType struct {
	Code int
	Name string

	schema *Schema
	key    Key
}

func (d *DataType) Key() Key         { return d.key }
func (d *DataType) FullName() string { return d.key.FullName() }
func (d *DataType) Schema() *Schema  { return d.schema }

// IsLargeObject reports whether the type holds character or binary LOB data.
func (d *DataType) IsLargeObject() bool {
	if d == nil {
		return false
	}
	switch d.Code {
	case TypeBlob, TypeClob, TypeNClob, TypeLongVarBinary, TypeLongVarChar, TypeLongNVarChar:
		return true
	}
	switch normalizeTypeName(d.Name) {
	case "BLOB", "CLOB", "NCLOB", "TEXT", "LONGTEXT", "MEDIUMTEXT", "BYTEA", "IMAGE", "NTEXT", "LONGBLOB", "MEDIUMBLOB":
		return true
	}
	return false
}
