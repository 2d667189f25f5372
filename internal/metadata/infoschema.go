package metadata

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Method names a Source call. Dialects use it to override statements.
type Method string

const (
	MethodSchemas            Method = "schemas"
	MethodTables             Method = "tables"
	MethodColumns            Method = "columns"
	MethodPrimaryKeys        Method = "primary_keys"
	MethodIndexes            Method = "indexes"
	MethodForeignKeys        Method = "foreign_keys"
	MethodTableConstraints   Method = "table_constraints"
	MethodCheckConstraints   Method = "check_constraints"
	MethodTriggers           Method = "triggers"
	MethodTablePrivileges    Method = "table_privileges"
	MethodViewDefinitions    Method = "view_definitions"
	MethodRoutines           Method = "routines"
	MethodRoutineParameters  Method = "routine_parameters"
	MethodRoutineDefinitions Method = "routine_definitions"
)

// Bind renders the placeholder for the n-th (1-based) query argument.
type Bind func(n int) string

var (
	BindQuestion Bind = func(int) string { return "?" }
	BindDollar   Bind = func(n int) string { return "$" + strconv.Itoa(n) }
	BindAtP      Bind = func(n int) string { return "@p" + strconv.Itoa(n) }
	BindColon    Bind = func(n int) string { return ":" + strconv.Itoa(n) }
)

// Statement is a metadata query plus the expressions that narrow it to one
// schema, object or specific name. SQL must end in a WHERE clause so that
// conditions can be appended with AND. An empty SQL marks the call as
// unsupported.
type Statement struct {
	SQL          string `toml:"sql"`
	SchemaExpr   string `toml:"schema"`
	NameExpr     string `toml:"name"`
	SpecificExpr string `toml:"specific"`
	OrderBy      string `toml:"order"`
}

// Build renders the statement for o.
func (st Statement) Build(o Object, bind Bind) (string, []any, error) {
	if strings.TrimSpace(st.SQL) == "" {
		return "", nil, ErrUnsupported
	}
	var b strings.Builder
	b.WriteString(strings.TrimSpace(st.SQL))
	var args []any
	add := func(expr, value string) error {
		if value == "" {
			return nil
		}
		if expr == "" {
			return fmt.Errorf("%w: statement cannot be narrowed to %q", ErrUnsupported, value)
		}
		args = append(args, value)
		fmt.Fprintf(&b, " AND %s = %s", expr, bind(len(args)))
		return nil
	}
	if err := add(st.SchemaExpr, o.Schema); err != nil {
		return "", nil, err
	}
	if err := add(st.NameExpr, o.Name); err != nil {
		return "", nil, err
	}
	if err := add(st.SpecificExpr, o.Specific); err != nil {
		return "", nil, err
	}
	if st.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(st.OrderBy)
	}
	return b.String(), args, nil
}

// InfoSchema is a Source over the SQL standard information_schema views.
// Dialects replace the statements their database spells differently.
type InfoSchema struct {
	DB         Querier
	Bind       Bind
	Statements map[Method]Statement
}

// NewInfoSchema returns a source using the standard statements with
// overrides applied on top.
func NewInfoSchema(db Querier, bind Bind, overrides map[Method]Statement) *InfoSchema {
	stmts := StandardStatements()
	maps.Copy(stmts, overrides)
	if bind == nil {
		bind = BindQuestion
	}
	return &InfoSchema{DB: db, Bind: bind, Statements: stmts}
}

func (s *InfoSchema) query(ctx context.Context, m Method, o Object) (Rows, error) {
	st, ok := s.Statements[m]
	if !ok {
		return nil, ErrUnsupported
	}
	q, args, err := st.Build(o, s.Bind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m, err)
	}
	rows, err := Query(ctx, s.DB, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", m, err)
	}
	return rows, nil
}

func (s *InfoSchema) Schemas(ctx context.Context) (Rows, error) {
	return s.query(ctx, MethodSchemas, All)
}

func (s *InfoSchema) Tables(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodTables, o)
}

func (s *InfoSchema) Columns(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodColumns, o)
}

func (s *InfoSchema) PrimaryKeys(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodPrimaryKeys, o)
}

func (s *InfoSchema) Indexes(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodIndexes, o)
}

func (s *InfoSchema) ForeignKeys(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodForeignKeys, o)
}

func (s *InfoSchema) TableConstraints(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodTableConstraints, o)
}

func (s *InfoSchema) CheckConstraints(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodCheckConstraints, o)
}

func (s *InfoSchema) Triggers(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodTriggers, o)
}

func (s *InfoSchema) TablePrivileges(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodTablePrivileges, o)
}

func (s *InfoSchema) ViewDefinitions(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodViewDefinitions, o)
}

func (s *InfoSchema) Routines(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodRoutines, o)
}

func (s *InfoSchema) RoutineParameters(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodRoutineParameters, o)
}

func (s *InfoSchema) RoutineDefinitions(ctx context.Context, o Object) (Rows, error) {
	return s.query(ctx, MethodRoutineDefinitions, o)
}

// StandardStatements returns the information_schema statements shared by
// most databases. Indexes have no standard view and are left unsupported.
func StandardStatements() map[Method]Statement {
	return map[Method]Statement{
		MethodSchemas: {
			SQL: `
        SELECT catalog_name AS TABLE_CAT, schema_name AS TABLE_SCHEM
        FROM information_schema.schemata
        WHERE LOWER(schema_name) NOT IN ('information_schema', 'pg_catalog', 'pg_toast', 'sys', 'performance_schema', 'mysql')`,
			OrderBy: "schema_name",
		},
		MethodTables: {
			SQL: `
        SELECT t.table_catalog AS TABLE_CAT, t.table_schema AS TABLE_SCHEM, t.table_name AS TABLE_NAME,
               t.table_type AS TABLE_TYPE
        FROM information_schema.tables t
        WHERE 1 = 1`,
			SchemaExpr: "t.table_schema",
			NameExpr:   "t.table_name",
			OrderBy:    "t.table_schema, t.table_name",
		},
		MethodColumns: {
			SQL: `
        SELECT c.table_catalog AS TABLE_CAT, c.table_schema AS TABLE_SCHEM, c.table_name AS TABLE_NAME,
               c.column_name AS COLUMN_NAME, c.ordinal_position AS ORDINAL_POSITION, c.data_type AS TYPE_NAME,
               c.character_maximum_length AS COLUMN_SIZE, c.numeric_precision AS NUMERIC_PRECISION,
               c.numeric_scale AS DECIMAL_DIGITS, c.is_nullable AS IS_NULLABLE, c.column_default AS COLUMN_DEF
        FROM information_schema.columns c
        WHERE 1 = 1`,
			SchemaExpr: "c.table_schema",
			NameExpr:   "c.table_name",
			OrderBy:    "c.table_schema, c.table_name, c.ordinal_position",
		},
		MethodPrimaryKeys: {
			SQL: `
        SELECT tc.table_catalog AS TABLE_CAT, tc.table_schema AS TABLE_SCHEM, tc.table_name AS TABLE_NAME,
               kcu.column_name AS COLUMN_NAME, kcu.ordinal_position AS KEY_SEQ, tc.constraint_name AS PK_NAME
        FROM information_schema.table_constraints tc
        JOIN information_schema.key_column_usage kcu
          ON tc.constraint_schema = kcu.constraint_schema
         AND tc.constraint_name = kcu.constraint_name
         AND tc.table_name = kcu.table_name
        WHERE tc.constraint_type = 'PRIMARY KEY'`,
			SchemaExpr: "tc.table_schema",
			NameExpr:   "tc.table_name",
			OrderBy:    "tc.table_schema, tc.table_name, kcu.ordinal_position",
		},
		MethodForeignKeys: {
			SQL: `
        SELECT pk.table_catalog AS PKTABLE_CAT, pk.table_schema AS PKTABLE_SCHEM, pk.table_name AS PKTABLE_NAME,
               pk.column_name AS PKCOLUMN_NAME,
               fk.table_catalog AS FKTABLE_CAT, fk.table_schema AS FKTABLE_SCHEM, fk.table_name AS FKTABLE_NAME,
               fk.column_name AS FKCOLUMN_NAME, fk.ordinal_position AS KEY_SEQ,
               rc.update_rule AS UPDATE_RULE, rc.delete_rule AS DELETE_RULE, rc.constraint_name AS FK_NAME
        FROM information_schema.referential_constraints rc
        JOIN information_schema.key_column_usage fk
          ON rc.constraint_schema = fk.constraint_schema
         AND rc.constraint_name = fk.constraint_name
        JOIN information_schema.key_column_usage pk
          ON rc.unique_constraint_schema = pk.constraint_schema
         AND rc.unique_constraint_name = pk.constraint_name
         AND fk.position_in_unique_constraint = pk.ordinal_position
        WHERE 1 = 1`,
			SchemaExpr: "fk.table_schema",
			NameExpr:   "fk.table_name",
			OrderBy:    "fk.table_schema, fk.table_name, rc.constraint_name, fk.ordinal_position",
		},
		MethodTableConstraints: {
			SQL: `
        SELECT tc.table_catalog AS TABLE_CAT, tc.table_schema AS TABLE_SCHEM, tc.table_name AS TABLE_NAME,
               tc.constraint_name AS CONSTRAINT_NAME, tc.constraint_type AS CONSTRAINT_TYPE,
               tc.is_deferrable AS IS_DEFERRABLE, tc.initially_deferred AS INITIALLY_DEFERRED
        FROM information_schema.table_constraints tc
        WHERE 1 = 1`,
			SchemaExpr: "tc.table_schema",
			NameExpr:   "tc.table_name",
			OrderBy:    "tc.table_schema, tc.table_name, tc.constraint_name",
		},
		MethodCheckConstraints: {
			SQL: `
        SELECT cc.constraint_catalog AS TABLE_CAT, cc.constraint_schema AS TABLE_SCHEM,
               cc.constraint_name AS CONSTRAINT_NAME, cc.check_clause AS CHECK_CLAUSE
        FROM information_schema.check_constraints cc
        WHERE 1 = 1`,
			SchemaExpr: "cc.constraint_schema",
			OrderBy:    "cc.constraint_schema, cc.constraint_name",
		},
		MethodTriggers: {
			SQL: `
        SELECT tr.event_object_catalog AS TABLE_CAT, tr.event_object_schema AS TABLE_SCHEM,
               tr.event_object_table AS TABLE_NAME, tr.trigger_name AS TRIGGER_NAME,
               tr.event_manipulation AS EVENT_MANIPULATION, tr.action_timing AS ACTION_TIMING,
               tr.action_orientation AS ACTION_ORIENTATION, tr.action_order AS ACTION_ORDER,
               tr.action_condition AS ACTION_CONDITION, tr.action_statement AS ACTION_STATEMENT
        FROM information_schema.triggers tr
        WHERE 1 = 1`,
			SchemaExpr: "tr.event_object_schema",
			NameExpr:   "tr.event_object_table",
			OrderBy:    "tr.event_object_schema, tr.event_object_table, tr.trigger_name",
		},
		MethodTablePrivileges: {
			SQL: `
        SELECT tp.table_catalog AS TABLE_CAT, tp.table_schema AS TABLE_SCHEM, tp.table_name AS TABLE_NAME,
               tp.grantor AS GRANTOR, tp.grantee AS GRANTEE, tp.privilege_type AS PRIVILEGE,
               tp.is_grantable AS IS_GRANTABLE
        FROM information_schema.table_privileges tp
        WHERE 1 = 1`,
			SchemaExpr: "tp.table_schema",
			NameExpr:   "tp.table_name",
			OrderBy:    "tp.table_schema, tp.table_name, tp.privilege_type",
		},
		MethodViewDefinitions: {
			SQL: `
        SELECT v.table_catalog AS TABLE_CAT, v.table_schema AS TABLE_SCHEM, v.table_name AS TABLE_NAME,
               v.view_definition AS VIEW_DEFINITION, v.check_option AS CHECK_OPTION,
               v.is_updatable AS IS_UPDATABLE
        FROM information_schema.views v
        WHERE 1 = 1`,
			SchemaExpr: "v.table_schema",
			NameExpr:   "v.table_name",
			OrderBy:    "v.table_schema, v.table_name",
		},
		MethodRoutines: {
			SQL: `
        SELECT r.routine_catalog AS ROUTINE_CAT, r.routine_schema AS ROUTINE_SCHEM,
               r.routine_name AS ROUTINE_NAME, r.specific_name AS SPECIFIC_NAME,
               r.routine_type AS ROUTINE_TYPE, r.data_type AS RETURN_TYPE
        FROM information_schema.routines r
        WHERE 1 = 1`,
			SchemaExpr:   "r.routine_schema",
			NameExpr:     "r.routine_name",
			SpecificExpr: "r.specific_name",
			OrderBy:      "r.routine_schema, r.routine_name, r.specific_name",
		},
		MethodRoutineParameters: {
			SQL: `
        SELECT r.routine_catalog AS ROUTINE_CAT, r.routine_schema AS ROUTINE_SCHEM,
               r.routine_name AS ROUTINE_NAME, p.specific_name AS SPECIFIC_NAME,
               p.parameter_name AS COLUMN_NAME, p.parameter_mode AS COLUMN_TYPE,
               p.ordinal_position AS ORDINAL_POSITION, p.data_type AS TYPE_NAME,
               p.character_maximum_length AS LENGTH, p.numeric_scale AS SCALE
        FROM information_schema.parameters p
        JOIN information_schema.routines r
          ON p.specific_schema = r.specific_schema
         AND p.specific_name = r.specific_name
        WHERE 1 = 1`,
			SchemaExpr:   "r.routine_schema",
			NameExpr:     "r.routine_name",
			SpecificExpr: "p.specific_name",
			OrderBy:      "r.routine_schema, p.specific_name, p.ordinal_position",
		},
		MethodRoutineDefinitions: {
			SQL: `
        SELECT r.routine_catalog AS ROUTINE_CAT, r.routine_schema AS ROUTINE_SCHEM,
               r.routine_name AS ROUTINE_NAME, r.specific_name AS SPECIFIC_NAME,
               r.routine_body AS ROUTINE_BODY, r.routine_definition AS ROUTINE_DEFINITION
        FROM information_schema.routines r
        WHERE 1 = 1`,
			SchemaExpr:   "r.routine_schema",
			NameExpr:     "r.routine_name",
			SpecificExpr: "r.specific_name",
			OrderBy:      "r.routine_schema, r.routine_name",
		},
	}
}
