package crawl

import (
	"fmt"
	"strings"
)

// Category is one kind of metadata, retrieved in its own phase.
type Category int

// Categories run in declaration order: parents before the children that
// reference them.
const (
	Schemas Category = iota
	Tables
	Routines
	TableColumns
	RoutineParameters
	PrimaryKeys
	Indexes
	ForeignKeys
	TableConstraints
	CheckConstraints
	Triggers
	TablePrivileges
	ViewDefinitions
	RoutineDefinitions
	numCategories
)

var categoryKeys = [numCategories]string{
	"schemas",
	"tables",
	"routines",
	"table_columns",
	"routine_parameters",
	"primary_keys",
	"indexes",
	"foreign_keys",
	"table_constraints",
	"check_constraints",
	"triggers",
	"table_privileges",
	"view_definitions",
	"routine_definitions",
}

var categoryAliases = map[string]Category{
	"columns":              TableColumns,
	"parameters":           RoutineParameters,
	"function_parameters":  RoutineParameters,
	"procedure_parameters": RoutineParameters,
	"functions":            Routines,
	"procedures":           Routines,
	"privileges":           TablePrivileges,
}

// String returns the configuration key of the category.
func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryKeys[c]
}

// MarshalText renders the configuration key.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseCategory accepts configuration keys in any case, with dashes or
// underscores.
func ParseCategory(s string) (Category, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for c, k := range categoryKeys {
		if k == key {
			return Category(c), nil
		}
	}
	if c, ok := categoryAliases[key]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown metadata category %q", s)
}

// AllCategories returns every category in dependency order.
func AllCategories() []Category {
	out := make([]Category, numCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// InfoLevel controls how much metadata a crawl retrieves.
type InfoLevel int

const (
	Minimum InfoLevel = iota
	Standard
	Detailed
	Maximum
)

var levelNames = [...]string{"minimum", "standard", "detailed", "maximum"}

func (l InfoLevel) String() string {
	if l < Minimum || l > Maximum {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseInfoLevel parses a level name. An empty string means Standard.
func ParseInfoLevel(s string) (InfoLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Standard, nil
	}
	for i, n := range levelNames {
		if n == s {
			return InfoLevel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown info level %q", s)
}

// Level returns the lowest info level that retrieves c.
func (c Category) Level() InfoLevel {
	switch c {
	case Schemas, Tables, Routines:
		return Minimum
	case TableColumns, RoutineParameters, PrimaryKeys, Indexes, ForeignKeys:
		return Standard
	case TableConstraints, CheckConstraints, Triggers, ViewDefinitions, RoutineDefinitions:
		return Detailed
	}
	return Maximum
}

// Includes reports whether a crawl at level l retrieves c.
func (l InfoLevel) Includes(c Category) bool {
	return c.Level() <= l
}
