package linters

import (
	"context"
	"slices"
	"strings"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/lint"
)

var ForeignKeyNoIndex = lint.RuleDef{
	ID:          "foreign-key-no-index",
	Description: "Foreign key columns should lead an index.",
	Severity:    lint.SeverityMedium,
	Check: func(_ context.Context, r *lint.Run) error {
		for _, t := range r.Tables() {
			covers := coverings(t)
			for _, fk := range t.ImportedForeignKeys() {
				cols := foreignKeyColumns(fk)
				if !slices.ContainsFunc(covers, func(c []string) bool { return isPrefix(cols, c) }) {
					r.Report(t, "foreign key with no index", fk.Name())
				}
			}
		}
		return nil
	},
}

var ForeignKeySelfReference = lint.RuleDef{
	ID:          "foreign-key-self-reference",
	Description: "Foreign keys referencing their own table.",
	Severity:    lint.SeverityMedium,
	Check: func(_ context.Context, r *lint.Run) error {
		for _, t := range r.Tables() {
			for _, fk := range t.ImportedForeignKeys() {
				if fk.IsSelfReferencing() {
					r.Report(t, "foreign key references its own table", fk.Name())
				}
			}
		}
		return nil
	},
}

var ForeignKeyMismatch = lint.RuleDef{
	ID:          "foreign-key-mismatch",
	Description: "Foreign key columns should have the type of the columns they reference.",
	Severity:    lint.SeverityHigh,
	Check: func(_ context.Context, r *lint.Run) error {
		for _, t := range r.Tables() {
			for _, fk := range t.ImportedForeignKeys() {
				if slices.ContainsFunc(fk.References(), mismatched) {
					r.Report(t, "foreign key data type different from primary key", fk.Name())
				}
			}
		}
		return nil
	},
}

func mismatched(ref catalog.ColumnReference) bool {
	return !strings.EqualFold(ref.ForeignKeyColumn.TypeName(), ref.PrimaryKeyColumn.TypeName())
}

func foreignKeyColumns(fk *catalog.ForeignKey) []string {
	refs := fk.References()
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = ref.ForeignKeyColumn.Name()
	}
	return out
}

var Cycles = lint.RuleDef{
	ID:          "cycles",
	Description: "Tables whose foreign keys form a cycle.",
	Severity:    lint.SeverityHigh,
	Check: func(_ context.Context, r *lint.Run) error {
		tables := r.Tables()
		for _, cycle := range findCycles(tables) {
			names := make([]string, len(cycle))
			for i, t := range cycle {
				names[i] = t.Name()
			}
			slices.Sort(names)
			for _, t := range cycle {
				r.Report(t, "cycle in table relationships", names)
			}
		}
		return nil
	},
}

// findCycles returns the strongly connected groups of two or more tables
// in the graph of foreign keys between tables. Self references are not
// cycles here.
func findCycles(tables []*catalog.Table) [][]*catalog.Table {
	in := make(map[*catalog.Table]bool, len(tables))
	for _, t := range tables {
		in[t] = true
	}
	edges := func(t *catalog.Table) []*catalog.Table {
		var out []*catalog.Table
		for _, fk := range t.ImportedForeignKeys() {
			if to := fk.ReferencedTable(); to != t && in[to] {
				out = append(out, to)
			}
		}
		return out
	}

	// Tarjan's algorithm.
	var (
		index   = map[*catalog.Table]int{}
		low     = map[*catalog.Table]int{}
		onStack = map[*catalog.Table]bool{}
		stack   []*catalog.Table
		next    int
		out     [][]*catalog.Table
		visit   func(t *catalog.Table)
	)
	visit = func(t *catalog.Table) {
		index[t], low[t] = next, next
		next++
		stack = append(stack, t)
		onStack[t] = true
		for _, to := range edges(t) {
			if _, seen := index[to]; !seen {
				visit(to)
				low[t] = min(low[t], low[to])
			} else if onStack[to] {
				low[t] = min(low[t], index[to])
			}
		}
		if low[t] != index[t] {
			return
		}
		var group []*catalog.Table
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			group = append(group, top)
			if top == t {
				break
			}
		}
		if len(group) > 1 {
			out = append(out, group)
		}
	}
	for _, t := range tables {
		if _, seen := index[t]; !seen {
			visit(t)
		}
	}
	return out
}
