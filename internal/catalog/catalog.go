// Package catalog holds the in-memory graph of database metadata built by a
// crawl: schemas, tables, routines and everything they contain.
package catalog

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle stage of a Catalog.
type State int32

const (
	StateEmpty State = iota
	StatePopulating
	StateFrozen
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulating:
		return "populating"
	case StateFrozen:
		return "frozen"
	}
	return "unknown"
}

var (
	// ErrFrozen is returned when a frozen catalog would be modified.
	ErrFrozen = errors.New("catalog is frozen")
	// ErrNotFrozen is returned when a consumer needs a finished catalog.
	ErrNotFrozen = errors.New("catalog is not frozen")
)

// CrawlInfo describes the crawl that produced a catalog.
type CrawlInfo struct {
	ID       uuid.UUID
	Dialect  string
	Started  time.Time
	Finished time.Time
}

// Catalog is the root of one crawl's metadata.
type Catalog struct {
	Name string
	Info CrawlInfo

	state        atomic.Int32
	naturalOrder bool
	schemas      NamedList[*Schema]
}

// New returns an empty catalog. With naturalOrder set, tables iterate in the
// order they were discovered instead of by name.
func New(name string, naturalOrder bool) *Catalog {
	return &Catalog{
		Name:         name,
		Info:         CrawlInfo{ID: uuid.New()},
		naturalOrder: naturalOrder,
	}
}

// State returns the current lifecycle stage.
func (c *Catalog) State() State {
	return State(c.state.Load())
}

// BeginPopulating moves an empty catalog into the populating stage.
func (c *Catalog) BeginPopulating() error {
	if c.state.CompareAndSwap(int32(StateEmpty), int32(StatePopulating)) {
		return nil
	}
	if c.State() == StateFrozen {
		return ErrFrozen
	}
	return nil
}

// Freeze marks the catalog read-only. It is a no-op on a frozen catalog.
func (c *Catalog) Freeze() {
	c.state.Store(int32(StateFrozen))
}

// CheckMutable returns ErrFrozen once the catalog is frozen.
func (c *Catalog) CheckMutable() error {
	if c.frozen() {
		return ErrFrozen
	}
	return nil
}

func (c *Catalog) frozen() bool {
	return c != nil && c.State() == StateFrozen
}

// NaturalOrder reports whether tables iterate in discovery order.
func (c *Catalog) NaturalOrder() bool {
	return c.naturalOrder
}

// ResolveSchema returns the schema for key, creating it on first reference.
// A frozen catalog returns nil for a schema it does not hold.
func (c *Catalog) ResolveSchema(key Key) (*Schema, bool) {
	key = key.SchemaKey()
	return resolveIn(c, &c.schemas, key, func() *Schema {
		return &Schema{catalog: c, key: key}
	})
}

// Schema finds a schema by composite key.
func (c *Catalog) Schema(key Key) (*Schema, bool) {
	return c.schemas.Lookup(key.SchemaKey())
}

// LookupSchema finds a schema by full or simple name.
func (c *Catalog) LookupSchema(name string) (*Schema, bool) {
	return c.schemas.LookupName(name)
}

// Schemas returns all schemas ordered by name.
func (c *Catalog) Schemas() []*Schema {
	return c.schemas.Sorted()
}

// Table finds a table by composite key.
func (c *Catalog) Table(key Key) (*Table, bool) {
	s, ok := c.Schema(key)
	if !ok {
		return nil, false
	}
	return s.tables.Lookup(s.key.Child(key.Name))
}

// Routine finds a routine by composite key, including its specific name.
func (c *Catalog) Routine(key Key) (*Routine, bool) {
	s, ok := c.Schema(key)
	if !ok {
		return nil, false
	}
	return s.routines.Lookup(routineKey(s.key, key.Name, key.Specific))
}

// Tables returns the tables of one schema.
func (c *Catalog) Tables(s *Schema) []*Table {
	if s == nil {
		return nil
	}
	return s.Tables()
}

// AllTables returns the tables of every schema, schema by schema.
func (c *Catalog) AllTables() []*Table {
	var out []*Table
	for _, s := range c.Schemas() {
		out = append(out, s.Tables()...)
	}
	return out
}

// Routines returns the routines of one schema.
func (c *Catalog) Routines(s *Schema) []*Routine {
	if s == nil {
		return nil
	}
	return s.Routines()
}

// AllRoutines returns the routines of every schema, schema by schema.
func (c *Catalog) AllRoutines() []*Routine {
	var out []*Routine
	for _, s := range c.Schemas() {
		out = append(out, s.Routines()...)
	}
	return out
}

// LookupTable finds a table by full name ("CAT.SCHEMA.TABLE") or by simple
// name, in which case the first match in schema order wins.
func (c *Catalog) LookupTable(name string) (*Table, bool) {
	for _, s := range c.Schemas() {
		if rest, ok := strings.CutPrefix(name, s.FullName()+"."); ok {
			if t, ok := s.LookupTable(rest); ok {
				return t, true
			}
		}
	}
	for _, s := range c.Schemas() {
		if t, ok := s.LookupTable(name); ok {
			return t, true
		}
	}
	return nil, false
}

// LookupRoutine finds a routine by full or simple name.
func (c *Catalog) LookupRoutine(name string) (*Routine, bool) {
	for _, s := range c.Schemas() {
		if rest, ok := strings.CutPrefix(name, s.FullName()+"."); ok {
			if r, ok := s.LookupRoutine(rest); ok {
				return r, true
			}
		}
	}
	for _, s := range c.Schemas() {
		if r, ok := s.LookupRoutine(name); ok {
			return r, true
		}
	}
	return nil, false
}

// LookupColumn finds a column by "TABLE.COLUMN" or a longer qualified name.
func (c *Catalog) LookupColumn(name string) (*Column, bool) {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return nil, false
	}
	t, ok := c.LookupTable(name[:i])
	if !ok {
		return nil, false
	}
	return t.LookupColumn(name[i+1:])
}
