package linters

import (
	"context"
	"slices"
	"strings"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/lint"
)

var NullableIndexColumns = lint.RuleDef{
	ID:          "nullable-index-columns",
	Description: "Unique indexes over nullable columns do not guarantee uniqueness.",
	Severity:    lint.SeverityMedium,
	Check: func(_ context.Context, r *lint.Run) error {
		for _, t := range r.Tables() {
			for _, idx := range indexesOf(t) {
				if !idx.Unique || idx.PrimaryKey {
					continue
				}
				if slices.ContainsFunc(idx.Columns(), func(c catalog.IndexColumn) bool { return c.Nullable }) {
					r.Report(t, "unique index with nullable columns", idx.Name())
				}
			}
		}
		return nil
	},
}

var RedundantIndexes = lint.RuleDef{
	ID:          "redundant-indexes",
	Description: "An index whose columns lead another index is redundant.",
	Severity:    lint.SeverityHigh,
	Check: func(_ context.Context, r *lint.Run) error {
		for _, t := range r.Tables() {
			for _, idx := range redundantIndexes(t) {
				r.Report(t, "redundant index", idx.Name())
			}
		}
		return nil
	},
}

// indexesOf returns t's indexes, leaving out the one backing the primary key.
func indexesOf(t *catalog.Table) []*catalog.Index {
	idxs := t.Indexes()
	if t.PrimaryKey == nil {
		return idxs
	}
	return slices.DeleteFunc(idxs, func(i *catalog.Index) bool {
		return i.PrimaryKey || strings.EqualFold(i.Name(), t.PrimaryKey.Name())
	})
}

// coverings returns the column lists of every index of t and its primary key.
func coverings(t *catalog.Table) [][]string {
	var out [][]string
	if t.PrimaryKey != nil {
		out = append(out, t.PrimaryKey.ColumnNames())
	}
	for _, idx := range indexesOf(t) {
		out = append(out, idx.ColumnNames())
	}
	return out
}

// redundantIndexes returns the indexes whose columns are a leading part of
// another index or of the primary key. Of two indexes over the same
// columns only the later one is redundant.
func redundantIndexes(t *catalog.Table) []*catalog.Index {
	idxs := indexesOf(t)
	var pk []string
	if t.PrimaryKey != nil {
		pk = t.PrimaryKey.ColumnNames()
	}
	var out []*catalog.Index
	for i, idx := range idxs {
		cols := idx.ColumnNames()
		redundant := pk != nil && isPrefix(cols, pk)
		for j, other := range idxs {
			if redundant {
				break
			}
			if i == j {
				continue
			}
			o := other.ColumnNames()
			redundant = isPrefix(cols, o) && (len(cols) < len(o) || j < i)
		}
		if redundant {
			out = append(out, idx)
		}
	}
	return out
}

// isPrefix reports whether cols is a non-empty leading part of of.
func isPrefix(cols, of []string) bool {
	if len(cols) == 0 || len(cols) > len(of) {
		return false
	}
	for i, c := range cols {
		if !strings.EqualFold(c, of[i]) {
			return false
		}
	}
	return true
}
