// Package filter decides which catalog objects are admitted by full name.
package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule admits or rejects an object by its fully qualified name.
type Rule interface {
	Test(fullName string) bool
}

type includeAll struct{}

func (includeAll) Test(string) bool { return true }
func (includeAll) String() string   { return "include all" }

type excludeAll struct{}

func (excludeAll) Test(string) bool { return false }
func (excludeAll) String() string   { return "exclude all" }

var (
	// IncludeAll admits every object.
	IncludeAll Rule = includeAll{}
	// ExcludeAll rejects every object. Categories governed by it are never
	// retrieved.
	ExcludeAll Rule = excludeAll{}
)

// Pattern admits names that fully match the include expression and do not
// fully match the exclude expression.
type Pattern struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
}

// matchEverything lists exclude expressions recognised as rejecting any name.
var matchEverything = map[string]bool{".*": true, "^.*$": true, "(.*)": true, "(?s).*": true}

// New builds a rule from an include and an exclude expression. An empty
// include admits everything and an empty exclude rejects nothing.
func New(include, exclude string) (Rule, error) {
	include = strings.TrimSpace(include)
	exclude = strings.TrimSpace(exclude)
	if matchEverything[exclude] {
		return ExcludeAll, nil
	}
	if (include == "" || matchEverything[include]) && exclude == "" {
		return IncludeAll, nil
	}
	p := &Pattern{}
	var err error
	if include != "" {
		if p.include, err = compile(include); err != nil {
			return nil, fmt.Errorf("include pattern: %w", err)
		}
	}
	if exclude != "" {
		if p.exclude, err = compile(exclude); err != nil {
			return nil, fmt.Errorf("exclude pattern: %w", err)
		}
	}
	return p, nil
}

// MustNew is New for patterns known to be valid. It panics on error.
func MustNew(include, exclude string) Rule {
	r, err := New(include, exclude)
	if err != nil {
		panic(err)
	}
	return r
}

// Include admits only names matching pattern.
func Include(pattern string) (Rule, error) { return New(pattern, "") }

// Exclude admits every name except those matching pattern.
func Exclude(pattern string) (Rule, error) { return New("", pattern) }

func compile(expr string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + expr + `)$`)
}

func (p *Pattern) Test(fullName string) bool {
	if p.include != nil && !p.include.MatchString(fullName) {
		return false
	}
	if p.exclude != nil && p.exclude.MatchString(fullName) {
		return false
	}
	return true
}

func (p *Pattern) String() string {
	var inc, exc string
	if p.include != nil {
		inc = p.include.String()
	}
	if p.exclude != nil {
		exc = p.exclude.String()
	}
	return fmt.Sprintf("include %q exclude %q", inc, exc)
}

// IsExcludeAll reports whether r can be known to reject every name without
// seeing any.
func IsExcludeAll(r Rule) bool {
	_, ok := r.(excludeAll)
	return ok
}

// OrAll returns r, or IncludeAll when r is nil.
func OrAll(r Rule) Rule {
	if r == nil {
		return IncludeAll
	}
	return r
}
