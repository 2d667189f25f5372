package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one metadata record. Column names are upper-cased so vendor case
// differences do not matter to readers. Every getter marks its column as
// consumed; Attributes returns what no getter asked for.
type Row struct {
	values map[string]any
	used   map[string]bool
}

// NewRow builds a row from a column to value map.
func NewRow(values map[string]any) *Row {
	r := &Row{values: make(map[string]any, len(values)), used: make(map[string]bool)}
	for k, v := range values {
		k = strings.ToUpper(k)
		r.values[k] = v
	}
	return r
}

// Has reports whether the row carries a non-null value for name.
func (r *Row) Has(name string) bool {
	v, ok := r.values[strings.ToUpper(name)]
	return ok && v != nil
}

func (r *Row) get(name string) (any, bool) {
	name = strings.ToUpper(name)
	r.used[name] = true
	v, ok := r.values[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the named value as trimmed text, or "" when absent or null.
func (r *Row) String(name string) string {
	v, ok := r.get(name)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []byte:
		return strings.TrimSpace(string(s))
	case time.Time:
		return s.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// Int returns the named value as an int, or def when absent or not numeric.
func (r *Row) Int(name string, def int) int {
	v, ok := r.get(name)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case []byte:
		return parseInt(string(n), def)
	case string:
		return parseInt(n, def)
	}
	return def
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}

// Bool interprets the named value as a flag: true, non-zero numbers and the
// strings YES, Y, TRUE, T and 1 are true.
func (r *Row) Bool(name string) bool {
	v, ok := r.get(name)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return truthy(b)
	case []byte:
		return truthy(string(b))
	}
	return r.Int(name, 0) != 0
}

func truthy(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES", "Y", "TRUE", "T", "1":
		return true
	}
	return false
}

// Attributes returns the non-null values no getter has consumed, or nil.
func (r *Row) Attributes() map[string]any {
	var out map[string]any
	for k, v := range r.values {
		if r.used[k] || v == nil {
			continue
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}

// Rows is a stream of metadata rows. Callers must Close it on every path.
type Rows interface {
	Next() bool
	Row() *Row
	Err() error
	Close() error
}

type sqlRows struct {
	rows    *sql.Rows
	columns []string
	current *Row
	err     error
	cancel  context.CancelFunc
}

// FromSQL adapts *sql.Rows. cancel, when not nil, runs on Close.
func FromSQL(rows *sql.Rows, cancel context.CancelFunc) (Rows, error) {
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		if cancel != nil {
			cancel()
		}
		return nil, fmt.Errorf("read result columns: %w", err)
	}
	for i, c := range cols {
		cols[i] = strings.ToUpper(c)
	}
	return &sqlRows{rows: rows, columns: cols, cancel: cancel}, nil
}

func (s *sqlRows) Next() bool {
	if s.err != nil || !s.rows.Next() {
		return false
	}
	vals := make([]any, len(s.columns))
	ptrs := make([]any, len(s.columns))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		s.err = fmt.Errorf("scan metadata row: %w", err)
		return false
	}
	m := make(map[string]any, len(s.columns))
	for i, c := range s.columns {
		m[c] = vals[i]
	}
	s.current = NewRow(m)
	return true
}

func (s *sqlRows) Row() *Row { return s.current }

func (s *sqlRows) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.rows.Err()
}

func (s *sqlRows) Close() error {
	err := s.rows.Close()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return err
}

type sliceRows struct {
	records []map[string]any
	pos     int
	current *Row
	closed  bool
}

// NewRows returns an in-memory stream over records.
func NewRows(records ...map[string]any) Rows {
	return &sliceRows{records: records}
}

func (s *sliceRows) Next() bool {
	if s.closed || s.pos >= len(s.records) {
		return false
	}
	s.current = NewRow(s.records[s.pos])
	s.pos++
	return true
}

func (s *sliceRows) Row() *Row  { return s.current }
func (s *sliceRows) Err() error { return nil }

func (s *sliceRows) Close() error {
	s.closed = true
	return nil
}

// Collect drains rows into memory and closes it.
func Collect(rows Rows) ([]*Row, error) {
	defer func() { _ = rows.Close() }()
	var out []*Row
	for rows.Next() {
		out = append(out, rows.Row())
	}
	return out, rows.Err()
}

// Values returns a copy of every column value, consumed or not.
func (r *Row) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Set stores a value under name, replacing any existing one.
func (r *Row) Set(name string, v any) {
	r.values[strings.ToUpper(name)] = v
}

type mappedRows struct {
	Rows
	fn func(*Row)
}

func (m *mappedRows) Next() bool {
	if !m.Rows.Next() {
		return false
	}
	m.fn(m.Rows.Row())
	return true
}

// Map returns rows with fn applied to every row before the reader sees it.
func Map(rows Rows, fn func(*Row)) Rows {
	return &mappedRows{Rows: rows, fn: fn}
}
