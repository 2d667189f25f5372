// Package lint runs checks over a frozen catalog and collects their
// findings. Linters register themselves with Register; an Engine holds the
// configured instances and produces a Result.
package lint

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Kinds of lint target.
const (
	KindCatalog    = "catalog"
	KindSchema     = "schema"
	KindTable      = "table"
	KindColumn     = "column"
	KindIndex      = "index"
	KindForeignKey = "foreign key"
	KindRoutine    = "routine"
)

// Lint is one finding. It is not changed after it is reported.
type Lint struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Target   string   `json:"target"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Value    string   `json:"value,omitempty"`
}

func (l Lint) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s: %s", l.Severity, l.Kind, l.Target, l.Message)
	if l.Value != "" {
		fmt.Fprintf(&b, " (%s)", l.Value)
	}
	fmt.Fprintf(&b, " [%s]", l.ID)
	return b.String()
}

func compareLints(a, b Lint) int {
	return cmp.Or(
		cmp.Compare(a.Target, b.Target),
		cmp.Compare(a.ID, b.ID),
		cmp.Compare(a.Message, b.Message),
	)
}

// Summary counts lints by linter id and by severity.
type Summary struct {
	Total      int              `json:"total"`
	ByRule     map[string]int   `json:"by_rule"`
	BySeverity map[Severity]int `json:"by_severity"`
}

func summarize(lints []Lint) Summary {
	s := Summary{
		Total:      len(lints),
		ByRule:     map[string]int{},
		BySeverity: map[Severity]int{},
	}
	for _, l := range lints {
		s.ByRule[l.ID]++
		s.BySeverity[l.Severity]++
	}
	return s
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d lints\n", s.Total)
	for sev := SeverityCritical; sev >= SeverityLow; sev-- {
		if n := s.BySeverity[sev]; n > 0 {
			fmt.Fprintf(&b, "  %-8s %d\n", sev, n)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(s.ByRule)) {
		fmt.Fprintf(&b, "  %-28s %d\n", id, s.ByRule[id])
	}
	return b.String()
}
