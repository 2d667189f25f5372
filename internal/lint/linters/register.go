// Package linters holds the built-in catalog linters. Importing it
// registers them with the lint package.
package linters

import "dbcatalog/internal/lint"

func init() {
	for _, def := range []lint.RuleDef{
		NoPrimaryKey,
		NoIndexes,
		SingleColumn,
		IncrementingColumns,
		NullIntendedColumns,
		NullableIndexColumns,
		RedundantIndexes,
		ForeignKeyNoIndex,
		ForeignKeySelfReference,
		ForeignKeyMismatch,
		ColumnTypes,
		TooManyLobs,
		QuotedNames,
		BadColumnNames,
		NoRemarks,
		Cycles,
		EmptyTable,
		TableSQL,
	} {
		lint.Register(def)
	}
}
