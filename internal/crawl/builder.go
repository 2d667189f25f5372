package crawl

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/metadata"
)

// verdict is what merging one row did.
type verdict int

const (
	kept verdict = iota
	filtered
	dropped
	// refused means the catalog is frozen and takes no more rows.
	refused
)

// builder merges metadata rows into a catalog. Objects are resolved by key,
// so a row seen twice updates the same object instead of adding a copy.
// Child rows never create their parents: a row naming an unknown parent is
// dropped.
type builder struct {
	cat    *catalog.Catalog
	limits Limits
	fks    map[catalog.Key]*catalog.ForeignKey
	// constraints indexes table constraints by schema and constraint name,
	// which is all a check constraint row carries.
	constraints map[catalog.Key]*catalog.Constraint
}

func newBuilder(cat *catalog.Catalog, limits Limits) *builder {
	return &builder{
		cat:         cat,
		limits:      limits,
		fks:         make(map[catalog.Key]*catalog.ForeignKey),
		constraints: make(map[catalog.Key]*catalog.Constraint),
	}
}

// guard wraps a merge function so that it refuses every row once the
// catalog is frozen.
func (b *builder) guard(merge func(*metadata.Row) verdict) func(*metadata.Row) verdict {
	return func(r *metadata.Row) verdict {
		if b.cat.CheckMutable() != nil {
			return refused
		}
		return merge(r)
	}
}

func mergeAttributes(dst *map[string]any, src map[string]any) {
	if len(src) == 0 {
		return
	}
	if *dst == nil {
		*dst = make(map[string]any, len(src))
	}
	maps.Copy(*dst, src)
}

func setString(dst *string, r *metadata.Row, name string) {
	if r.Has(name) {
		*dst = r.String(name)
	}
}

func setInt(dst *int, r *metadata.Row, name string) {
	if r.Has(name) {
		*dst = r.Int(name, *dst)
	}
}

func setBool(dst *bool, r *metadata.Row, name string) {
	if r.Has(name) {
		*dst = r.Bool(name)
	}
}

// normalizeTableType upper-cases a vendor table type and folds the
// information_schema spelling of plain tables into TABLE.
func normalizeTableType(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	switch t {
	case "BASE TABLE", "":
		return "TABLE"
	}
	return t
}

func (b *builder) lookupSchema(cat, schema string) (*catalog.Schema, bool) {
	if s, ok := b.cat.Schema(catalog.Key{Catalog: cat, Schema: schema}); ok {
		return s, true
	}
	if cat != "" && schema != "" {
		return nil, false
	}
	// Drivers that leave the catalog or schema column blank in some views.
	name := cat
	if schema != "" {
		name = schema
	}
	return b.cat.LookupSchema(name)
}

func (b *builder) lookupTable(r *metadata.Row, prefix string) (*catalog.Table, bool) {
	s, ok := b.lookupSchema(r.String(prefix+"_CAT"), r.String(prefix+"_SCHEM"))
	if !ok {
		return nil, false
	}
	name := r.String(prefix + "_NAME")
	if name == "" {
		return nil, false
	}
	t, ok := s.LookupTable(s.Key().Child(name).FullName())
	if !ok {
		return nil, false
	}
	return t, true
}

func (b *builder) lookupRoutine(r *metadata.Row) (*catalog.Routine, bool) {
	s, ok := b.lookupSchema(r.String("ROUTINE_CAT"), r.String("ROUTINE_SCHEM"))
	if !ok {
		return nil, false
	}
	name := r.String("ROUTINE_NAME")
	if name == "" {
		return nil, false
	}
	return s.Routine(name, r.String("SPECIFIC_NAME"))
}

func (b *builder) schema(r *metadata.Row) verdict {
	key := catalog.Key{Catalog: r.String("TABLE_CAT"), Schema: r.String("TABLE_SCHEM")}
	if key.IsZero() {
		return dropped
	}
	if !b.limits.Schemas.Test(key.FullName()) {
		return filtered
	}
	s, _ := b.cat.ResolveSchema(key)
	setString(&s.Remarks, r, "REMARKS")
	mergeAttributes(&s.Attributes, r.Attributes())
	return kept
}

func (b *builder) table(r *metadata.Row) verdict {
	s, ok := b.lookupSchema(r.String("TABLE_CAT"), r.String("TABLE_SCHEM"))
	name := r.String("TABLE_NAME")
	if !ok || name == "" {
		return dropped
	}
	typ := normalizeTableType(r.String("TABLE_TYPE"))
	if len(b.limits.TableTypes) > 0 && !slices.Contains(b.limits.TableTypes, typ) {
		return filtered
	}
	if !b.limits.Tables.Test(s.Key().Child(name).FullName()) {
		return filtered
	}
	kind := catalog.KindTable
	if strings.Contains(typ, "VIEW") {
		kind = catalog.KindView
	}
	t, _ := s.ResolveTable(name, kind)
	t.TableType = typ
	if kind == catalog.KindView && t.View == nil {
		t.View = &catalog.ViewInfo{}
	}
	setString(&t.Remarks, r, "REMARKS")
	mergeAttributes(&t.Attributes, r.Attributes())
	return kept
}

func (b *builder) dataType(s *catalog.Schema, r *metadata.Row) *catalog.DataType {
	name := r.String("TYPE_NAME")
	if name == "" && !r.Has("DATA_TYPE") {
		return nil
	}
	return s.ResolveDataType(r.Int("DATA_TYPE", catalog.TypeCode(name)), name)
}

func (b *builder) column(r *metadata.Row) verdict {
	t, ok := b.lookupTable(r, "TABLE")
	name := r.String("COLUMN_NAME")
	if !ok || name == "" {
		return dropped
	}
	if !b.limits.Columns.Test(t.FullName() + "." + name) {
		return filtered
	}
	col, _ := t.ResolveColumn(name)
	setInt(&col.Ordinal, r, "ORDINAL_POSITION")
	if dt := b.dataType(t.Schema(), r); dt != nil {
		col.Type = dt
	}
	if r.Has("COLUMN_SIZE") {
		col.Size = r.Int("COLUMN_SIZE", col.Size)
	} else {
		setInt(&col.Size, r, "NUMERIC_PRECISION")
	}
	setInt(&col.DecimalDigits, r, "DECIMAL_DIGITS")
	if r.Has("IS_NULLABLE") {
		col.Nullable = r.Bool("IS_NULLABLE")
	} else if r.Has("NULLABLE") {
		col.Nullable = r.Int("NULLABLE", 0) == 1
	}
	setString(&col.Default, r, "COLUMN_DEF")
	setString(&col.Remarks, r, "REMARKS")
	setBool(&col.AutoIncremented, r, "IS_AUTOINCREMENT")
	setBool(&col.Generated, r, "IS_GENERATEDCOLUMN")
	mergeAttributes(&col.Attributes, r.Attributes())
	return kept
}

func (b *builder) primaryKey(r *metadata.Row) verdict {
	t, ok := b.lookupTable(r, "TABLE")
	if !ok {
		return dropped
	}
	col, ok := t.LookupColumn(r.String("COLUMN_NAME"))
	if !ok {
		return dropped
	}
	if t.PrimaryKey == nil {
		name := r.String("PK_NAME")
		if name == "" {
			name = t.Name() + "_PK"
		}
		t.PrimaryKey = catalog.NewPrimaryKey(t, name)
	}
	t.PrimaryKey.AddColumn(col, r.Int("KEY_SEQ", len(t.PrimaryKey.Columns())+1), false)
	col.PartOfPrimaryKey = true
	mergeAttributes(&t.PrimaryKey.Attributes, r.Attributes())
	return kept
}

func (b *builder) index(r *metadata.Row) verdict {
	t, ok := b.lookupTable(r, "TABLE")
	name := r.String("INDEX_NAME")
	if !ok || name == "" {
		return dropped
	}
	col, ok := t.LookupColumn(r.String("COLUMN_NAME"))
	if !ok {
		return dropped
	}
	idx, _ := t.ResolveIndex(name)
	if r.Has("NON_UNIQUE") {
		idx.Unique = !r.Bool("NON_UNIQUE")
	}
	setString(&idx.IndexType, r, "TYPE")
	desc := strings.EqualFold(r.String("ASC_OR_DESC"), "D")
	idx.AddColumn(col, r.Int("ORDINAL_POSITION", len(idx.Columns())+1), desc)
	col.PartOfIndex = true
	if idx.Unique {
		col.PartOfUniqueIndex = true
	}
	mergeAttributes(&idx.Attributes, r.Attributes())
	return kept
}

var fkRules = map[string]string{
	"0": "CASCADE",
	"1": "RESTRICT",
	"2": "SET NULL",
	"3": "NO ACTION",
	"4": "SET DEFAULT",
}

var deferrability = map[string]string{
	"5": "INITIALLY DEFERRED",
	"6": "INITIALLY IMMEDIATE",
	"7": "NOT DEFERRABLE",
}

func ruleName(r *metadata.Row, name string, codes map[string]string) string {
	v := strings.ToUpper(r.String(name))
	if n, ok := codes[v]; ok {
		return n
	}
	return v
}

func (b *builder) foreignKey(r *metadata.Row) verdict {
	fkTable, ok := b.lookupTable(r, "FKTABLE")
	if !ok {
		return dropped
	}
	pkTable, ok := b.lookupTable(r, "PKTABLE")
	if !ok {
		return dropped
	}
	fkCol, ok := fkTable.LookupColumn(r.String("FKCOLUMN_NAME"))
	if !ok {
		return dropped
	}
	seq := r.Int("KEY_SEQ", 1)
	pkName := r.String("PKCOLUMN_NAME")
	if pkName == "" && pkTable.PrimaryKey != nil {
		if cols := pkTable.PrimaryKey.Columns(); seq >= 1 && seq <= len(cols) {
			pkName = cols[seq-1].Name()
		}
	}
	pkCol, ok := pkTable.LookupColumn(pkName)
	if !ok {
		return dropped
	}

	name := r.String("FK_NAME")
	if name == "" {
		name = fmt.Sprintf("%s_%s_FK", fkTable.Name(), pkTable.Name())
	}
	key := catalog.ForeignKeyKey(fkTable.Key(), name)
	fk, ok := b.fks[key]
	if !ok {
		fk = catalog.NewForeignKey(fkTable.Key(), name)
		b.fks[key] = fk
	}
	fk.AddReference(catalog.ColumnReference{KeySequence: seq, ForeignKeyColumn: fkCol, PrimaryKeyColumn: pkCol})
	if r.Has("UPDATE_RULE") {
		fk.UpdateRule = ruleName(r, "UPDATE_RULE", fkRules)
	}
	if r.Has("DELETE_RULE") {
		fk.DeleteRule = ruleName(r, "DELETE_RULE", fkRules)
	}
	if r.Has("DEFERRABILITY") {
		fk.Deferrability = ruleName(r, "DEFERRABILITY", deferrability)
	}
	mergeAttributes(&fk.Attributes, r.Attributes())

	fkTable.AttachForeignKey(fk)
	pkTable.AttachForeignKey(fk)
	fkCol.PartOfForeignKey = true
	fkCol.Referenced = pkCol
	return kept
}

func (b *builder) tableConstraint(r *metadata.Row) verdict {
	t, ok := b.lookupTable(r, "TABLE")
	name := r.String("CONSTRAINT_NAME")
	if !ok || name == "" {
		return dropped
	}
	c, _ := t.ResolveConstraint(name)
	if r.Has("CONSTRAINT_TYPE") {
		c.Type = catalog.ParseConstraintType(r.String("CONSTRAINT_TYPE"))
	}
	setBool(&c.Deferrable, r, "IS_DEFERRABLE")
	setBool(&c.InitiallyDeferred, r, "INITIALLY_DEFERRED")
	mergeAttributes(&c.Attributes, r.Attributes())
	b.constraints[t.Schema().Key().Child(name)] = c
	return kept
}

func (b *builder) checkConstraint(r *metadata.Row) verdict {
	s, ok := b.lookupSchema(r.String("TABLE_CAT"), r.String("TABLE_SCHEM"))
	name := r.String("CONSTRAINT_NAME")
	if !ok || name == "" {
		return dropped
	}
	c, ok := b.constraints[s.Key().Child(name)]
	if !ok {
		t, found := b.lookupTable(r, "TABLE")
		if !found {
			return dropped
		}
		c, _ = t.ResolveConstraint(name)
		b.constraints[s.Key().Child(name)] = c
	}
	if c.Type == "" || c.Type == catalog.ConstraintUnknown {
		c.Type = catalog.ConstraintCheck
	}
	setString(&c.Definition, r, "CHECK_CLAUSE")
	mergeAttributes(&c.Attributes, r.Attributes())
	return kept
}

func (b *builder) trigger(r *metadata.Row) verdict {
	t, ok := b.lookupTable(r, "TABLE")
	name := r.String("TRIGGER_NAME")
	if !ok || name == "" {
		return dropped
	}
	tr, _ := t.ResolveTrigger(name)
	if ev := r.String("EVENT_MANIPULATION"); ev != "" {
		tr.AddEvent(strings.ToUpper(ev))
	}
	setString(&tr.ActionTiming, r, "ACTION_TIMING")
	setString(&tr.ActionOrientation, r, "ACTION_ORIENTATION")
	setInt(&tr.ActionOrder, r, "ACTION_ORDER")
	setString(&tr.ActionCondition, r, "ACTION_CONDITION")
	setString(&tr.ActionStatement, r, "ACTION_STATEMENT")
	mergeAttributes(&tr.Attributes, r.Attributes())
	return kept
}

func (b *builder) privilege(r *metadata.Row) verdict {
	t, ok := b.lookupTable(r, "TABLE")
	name := r.String("PRIVILEGE")
	if !ok || name == "" {
		return dropped
	}
	p, _ := t.ResolvePrivilege(strings.ToUpper(name))
	p.AddGrant(catalog.Grant{
		Grantor:   r.String("GRANTOR"),
		Grantee:   r.String("GRANTEE"),
		Grantable: r.Bool("IS_GRANTABLE"),
	})
	return kept
}

func (b *builder) viewDefinition(r *metadata.Row) verdict {
	t, ok := b.lookupTable(r, "TABLE")
	if !ok || !t.IsView() {
		return dropped
	}
	if t.View == nil {
		t.View = &catalog.ViewInfo{}
	}
	setString(&t.View.Definition, r, "VIEW_DEFINITION")
	setString(&t.View.CheckOption, r, "CHECK_OPTION")
	setBool(&t.View.Updatable, r, "IS_UPDATABLE")
	mergeAttributes(&t.Attributes, r.Attributes())
	return kept
}

func (b *builder) routine(r *metadata.Row) verdict {
	s, ok := b.lookupSchema(r.String("ROUTINE_CAT"), r.String("ROUTINE_SCHEM"))
	name := r.String("ROUTINE_NAME")
	if !ok || name == "" {
		return dropped
	}
	if !b.limits.Routines.Test(s.Key().Child(name).FullName()) {
		return filtered
	}
	kind := catalog.ParseRoutineKind(r.String("ROUTINE_TYPE"))
	rt, created := s.ResolveRoutine(name, r.String("SPECIFIC_NAME"), kind)
	if !created && r.Has("ROUTINE_TYPE") {
		rt.Kind = kind
	}
	if rt.IsFunction() {
		if rt.Function == nil {
			rt.Function = &catalog.FunctionInfo{}
		}
		setString(&rt.Function.ReturnType, r, "RETURN_TYPE")
	}
	setString(&rt.Remarks, r, "REMARKS")
	mergeAttributes(&rt.Attributes, r.Attributes())
	return kept
}

func (b *builder) parameter(r *metadata.Row) verdict {
	rt, ok := b.lookupRoutine(r)
	if !ok {
		return dropped
	}
	mode := catalog.ParseParameterMode(r.String("COLUMN_TYPE"))
	ordinal := r.Int("ORDINAL_POSITION", -1)
	name := r.String("COLUMN_NAME")
	if name == "" {
		switch {
		case mode == catalog.ModeResult || mode == catalog.ModeReturn:
		case mode == catalog.ModeUnknown && ordinal == 0:
			mode = catalog.ModeReturn
		default:
			return dropped
		}
		name = catalog.ReturnValueName
	}
	if !b.limits.Parameters.Test(rt.FullName() + "." + name) {
		return filtered
	}
	p, _ := rt.ResolveParameter(name)
	if ordinal >= 0 {
		p.Ordinal = ordinal
	}
	p.Mode = mode
	if dt := b.dataType(rt.Schema(), r); dt != nil {
		p.Type = dt
	}
	if r.Has("LENGTH") {
		p.Size = r.Int("LENGTH", p.Size)
	} else {
		setInt(&p.Size, r, "PRECISION")
	}
	setInt(&p.DecimalDigits, r, "SCALE")
	if r.Has("IS_NULLABLE") {
		p.Nullable = r.Bool("IS_NULLABLE")
	} else if r.Has("NULLABLE") {
		p.Nullable = r.Int("NULLABLE", 0) == 1
	}
	setString(&p.Remarks, r, "REMARKS")
	mergeAttributes(&p.Attributes, r.Attributes())
	return kept
}

func (b *builder) routineDefinition(r *metadata.Row) verdict {
	rt, ok := b.lookupRoutine(r)
	if !ok {
		return dropped
	}
	setString(&rt.Body, r, "ROUTINE_BODY")
	setString(&rt.Definition, r, "ROUTINE_DEFINITION")
	mergeAttributes(&rt.Attributes, r.Attributes())
	return kept
}
