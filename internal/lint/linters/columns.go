package linters

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/lint"
)

var IncrementingColumns = lint.RuleDef{
	ID:          "incrementing-columns",
	Description: "Columns named alike apart from a numeric suffix suggest a missing child table.",
	Severity:    lint.SeverityMedium,
	Check: func(_ context.Context, r *lint.Run) error {
		for _, t := range r.Tables() {
			groups := map[string][]*catalog.Column{}
			var order []string
			for _, c := range r.Columns(t) {
				prefix, ok := numberedPrefix(c.Name())
				if !ok {
					continue
				}
				if _, seen := groups[prefix]; !seen {
					order = append(order, prefix)
				}
				groups[prefix] = append(groups[prefix], c)
			}
			for _, prefix := range order {
				cols := groups[prefix]
				if len(cols) < 2 {
					continue
				}
				for _, c := range cols {
					r.Report(c, "incrementing column names", prefix)
				}
			}
		}
		return nil
	},
}

// numberedPrefix splits a trailing run of digits off name. It reports
// false when there is no such suffix or nothing is left in front of it.
func numberedPrefix(name string) (string, bool) {
	prefix := strings.TrimRight(name, "0123456789")
	if prefix == name || prefix == "" {
		return "", false
	}
	return strings.ToUpper(prefix), true
}

var NullIntendedColumns = lint.RuleDef{
	ID:          "null-intended-columns",
	Description: "A default of the string NULL was probably meant as a null default.",
	Severity:    lint.SeverityMedium,
	Check: func(_ context.Context, r *lint.Run) error {
		for _, t := range r.Tables() {
			for _, c := range r.Columns(t) {
				if strings.EqualFold(strings.TrimSpace(c.Default), "NULL") {
					r.Report(c, "column where NULL may be intended", c.Default)
				}
			}
		}
		return nil
	},
}

var ColumnTypes = lint.RuleDef{
	ID:          "column-types",
	Description: "Columns sharing a name should share a data type.",
	Severity:    lint.SeverityMedium,
	Check: func(_ context.Context, r *lint.Run) error {
		types := map[string]map[string]bool{}
		for _, t := range r.Tables() {
			for _, c := range r.Columns(t) {
				name := strings.ToUpper(c.Name())
				if types[name] == nil {
					types[name] = map[string]bool{}
				}
				types[name][strings.ToUpper(c.TypeName())] = true
			}
		}
		for _, name := range slices.Sorted(maps.Keys(types)) {
			if len(types[name]) > 1 {
				r.ReportCatalog("column with same name but different data types",
					fmt.Sprintf("%s: %s", name, strings.Join(slices.Sorted(maps.Keys(types[name])), ", ")))
			}
		}
		return nil
	},
}

var QuotedNames = lint.RuleDef{
	ID:          "quoted-names",
	Description: "Names that need quoting are awkward to use.",
	Severity:    lint.SeverityMedium,
	Check: func(_ context.Context, r *lint.Run) error {
		for _, t := range r.Tables() {
			if needsQuotes(t.Name()) {
				r.Report(t, "spaces in name, or reserved word", t.Name())
			}
			for _, c := range r.Columns(t) {
				if needsQuotes(c.Name()) {
					r.Report(c, "spaces in name, or reserved word", c.Name())
				}
			}
		}
		return nil
	},
}

var BadColumnNames = lint.RuleDef{
	ID:          "bad-column-names",
	Description: "Columns whose full names match a configured pattern.",
	Severity:    lint.SeverityMedium,
	ConfigKeys:  []string{"bad-column-names"},
	Check: func(_ context.Context, r *lint.Run) error {
		expr := r.StringOption("bad-column-names", "")
		if expr == "" {
			return nil
		}
		re, err := regexp.Compile(`^(?:` + expr + `)$`)
		if err != nil {
			return fmt.Errorf("bad-column-names pattern: %w", err)
		}
		for _, t := range r.Tables() {
			for _, c := range r.Columns(t) {
				if re.MatchString(c.FullName()) {
					r.Report(c, "badly named column", c.Name())
				}
			}
		}
		return nil
	},
}
