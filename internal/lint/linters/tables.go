package linters

import (
	"context"
	"strings"

	"dbcatalog/internal/lint"
)

var NoPrimaryKey = lint.RuleDef{
	ID:          "no-primary-key",
	Description: "Tables should have a primary key.",
	Severity:    lint.SeverityHigh,
	Check: func(_ context.Context, r *lint.Run) error {
		for _, t := range r.Tables() {
			if !t.IsView() && t.PrimaryKey == nil {
				r.Report(t, "no primary key", nil)
			}
		}
		return nil
	},
}

var NoIndexes = lint.RuleDef{
	ID:          "no-indexes",
	Description: "Tables should have at least one index or a primary key.",
	Severity:    lint.SeverityHigh,
	Check: func(_ context.Context, r *lint.Run) error {
		for _, t := range r.Tables() {
			if !t.IsView() && t.PrimaryKey == nil && len(t.Indexes()) == 0 {
				r.Report(t, "no indexes", nil)
			}
		}
		return nil
	},
}

var SingleColumn = lint.RuleDef{
	ID:          "single-column",
	Description: "Tables with a single column are rarely what was intended.",
	Severity:    lint.SeverityLow,
	Check: func(_ context.Context, r *lint.Run) error {
		for _, t := range r.Tables() {
			if !t.IsView() && len(r.Columns(t)) == 1 {
				r.Report(t, "single column", nil)
			}
		}
		return nil
	},
}

var TooManyLobs = lint.RuleDef{
	ID:          "too-many-lobs",
	Description: "Tables should not hold many large object columns.",
	Severity:    lint.SeverityLow,
	ConfigKeys:  []string{"max-large-objects"},
	Check: func(_ context.Context, r *lint.Run) error {
		limit := r.IntOption("max-large-objects", 1)
		for _, t := range r.Tables() {
			n := 0
			for _, c := range r.Columns(t) {
				if c.Type.IsLargeObject() {
					n++
				}
			}
			if n > limit {
				r.Report(t, "too many binary objects", n)
			}
		}
		return nil
	},
}

var NoRemarks = lint.RuleDef{
	ID:          "no-remarks",
	Description: "Tables and columns should be documented with remarks.",
	Severity:    lint.SeverityLow,
	Check: func(_ context.Context, r *lint.Run) error {
		for _, t := range r.Tables() {
			if strings.TrimSpace(t.Remarks) == "" {
				r.Report(t, "should have remarks", nil)
			}
			for _, c := range r.Columns(t) {
				if strings.TrimSpace(c.Remarks) == "" {
					r.Report(c, "should have remarks", nil)
				}
			}
		}
		return nil
	},
}
