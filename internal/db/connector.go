// Package db opens database connections and pairs them with the dialect
// that knows how to read their metadata.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/crawl"
	"dbcatalog/internal/metadata"
	"dbcatalog/pkg/config"
)

// Dialect describes one database flavour: the database/sql driver it opens
// connections with, how to build its metadata source, and the crawl
// defaults that suit it.
type Dialect struct {
	Name    string
	Driver  string
	Aliases []string

	// NewSource builds the metadata source over an open connection.
	NewSource func(conn *sql.DB) metadata.Source

	Strategies map[crawl.Category]crawl.Strategy
	Queries    crawl.Queries
}

var (
	mu       sync.RWMutex
	dialects = map[string]Dialect{}
)

// Register makes a dialect available under its name and aliases.
func Register(d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[strings.ToLower(d.Name)] = d
	for _, a := range d.Aliases {
		dialects[strings.ToLower(a)] = d
	}
}

// listRegistered returns the registered keys, aliases included.
func listRegistered() []string {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Sorted(maps.Keys(dialects))
}

// UnknownDialectError is returned for a name no dialect is registered under.
type UnknownDialectError struct {
	Name      string
	Available []string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("dialect not registered: %q (available: %v)", e.Name, e.Available)
}

// Lookup returns the dialect registered under name. Driver spellings such
// as "postgresql" or "mssql" are normalized first.
func Lookup(name string) (Dialect, error) {
	key := config.NormalizeDriver(name)
	mu.RLock()
	d, ok := dialects[key]
	mu.RUnlock()
	if !ok {
		return Dialect{}, &UnknownDialectError{Name: key, Available: listRegistered()}
	}
	return d, nil
}

// RegisteredDialects returns every registered dialect once, sorted by name.
func RegisteredDialects() []Dialect {
	mu.RLock()
	defer mu.RUnlock()
	seen := map[string]Dialect{}
	for _, d := range dialects {
		seen[d.Name] = d
	}
	out := slices.Collect(maps.Values(seen))
	slices.SortFunc(out, func(a, b Dialect) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Handle is an open, pinged connection and its dialect.
type Handle struct {
	DB      *sql.DB
	Dialect Dialect
	Source  metadata.Source
}

// Connect opens a connection with the dialect registered for driver and pings it
// within timeoutSec seconds.
func Connect(ctx context.Context, driver, dsn string, timeoutSec int) (*Handle, error) {
	d, err := Lookup(driver)
	if err != nil {
		return nil, err
	}
	conn, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", crawl.ErrConnection, d.Name, err)
	}
	var src metadata.Source = metadata.Unsupported{}
	if d.NewSource != nil {
		src = d.NewSource(conn)
	}
	return &Handle{DB: conn, Dialect: d, Source: src}, nil
}

// Connection returns what a crawl reads from.
func (h *Handle) Connection(name string) crawl.Connection {
	return crawl.Connection{Name: name, Dialect: h.Dialect.Name, DB: h.DB, Source: h.Source}
}

// Options layers the dialect defaults under opts.
func (h *Handle) Options(opts crawl.Options) crawl.Options {
	return opts.WithDefaults(h.Dialect.Strategies, h.Dialect.Queries)
}

func (h *Handle) Close() error {
	return h.DB.Close()
}

// ConnectAndCrawl connects to the database and crawls its metadata. The
// connection is closed before returning.
func ConnectAndCrawl(ctx context.Context, driver, dsn string, timeoutSec int, name string, opts crawl.Options) (*catalog.Catalog, *crawl.Report, error) {
	h, err := Connect(ctx, driver, dsn, timeoutSec)
	if err != nil {
		return nil, nil, err
	}
	defer h.Close()
	return crawl.Crawl(ctx, h.Connection(name), h.Options(opts))
}
