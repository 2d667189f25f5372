// Package dialects registers the supported databases with internal/db.
// Each dialect pairs a database/sql driver with a query pack: an embedded
// TOML file holding statement overrides for the information_schema source,
// default retrieval strategies and vendor queries for bulk-query-all.
package dialects

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"

	"github.com/BurntSushi/toml"

	"dbcatalog/internal/crawl"
	"dbcatalog/internal/db"
	"dbcatalog/internal/metadata"
)

//go:embed packs/*.toml
var packFS embed.FS

// packFile mirrors the TOML layout of a query pack.
type packFile struct {
	Bind       string                        `toml:"bind"`
	Strategies map[string]string             `toml:"strategies"`
	Queries    map[string]string             `toml:"queries"`
	Statements map[string]metadata.Statement `toml:"statements"`
}

var knownMethods = map[metadata.Method]bool{
	metadata.MethodSchemas:            true,
	metadata.MethodTables:             true,
	metadata.MethodColumns:            true,
	metadata.MethodPrimaryKeys:        true,
	metadata.MethodIndexes:            true,
	metadata.MethodForeignKeys:        true,
	metadata.MethodTableConstraints:   true,
	metadata.MethodCheckConstraints:   true,
	metadata.MethodTriggers:           true,
	metadata.MethodTablePrivileges:    true,
	metadata.MethodViewDefinitions:    true,
	metadata.MethodRoutines:           true,
	metadata.MethodRoutineParameters:  true,
	metadata.MethodRoutineDefinitions: true,
}

var binds = map[string]metadata.Bind{
	"":         metadata.BindQuestion,
	"question": metadata.BindQuestion,
	"dollar":   metadata.BindDollar,
	"atp":      metadata.BindAtP,
	"colon":    metadata.BindColon,
}

// pack is a decoded and validated query pack.
type pack struct {
	bind       metadata.Bind
	strategies map[crawl.Category]crawl.Strategy
	queries    crawl.Queries
	statements map[metadata.Method]metadata.Statement
}

func loadPack(name string) (*pack, error) {
	file := path.Join("packs", name+".toml")
	b, err := packFS.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read pack %s: %w", name, err)
	}
	var pf packFile
	md, err := toml.Decode(string(b), &pf)
	if err != nil {
		return nil, fmt.Errorf("decode pack %s: %w", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("pack %s: unknown keys %v", name, undecoded)
	}
	p, err := pf.convert()
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", name, err)
	}
	return p, nil
}

func (pf packFile) convert() (*pack, error) {
	var errs []error
	bind, ok := binds[pf.Bind]
	if !ok {
		errs = append(errs, fmt.Errorf("unknown bind style %q", pf.Bind))
	}
	p := &pack{
		bind:       bind,
		strategies: make(map[crawl.Category]crawl.Strategy, len(pf.Strategies)),
		queries:    make(crawl.Queries, len(pf.Queries)),
		statements: make(map[metadata.Method]metadata.Statement, len(pf.Statements)),
	}
	for k, v := range pf.Strategies {
		c, err := crawl.ParseCategory(k)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s, err := crawl.ParseStrategy(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
			continue
		}
		p.strategies[c] = s
	}
	for k, q := range pf.Queries {
		c, err := crawl.ParseCategory(k)
		if err != nil {
			errs = append(errs, fmt.Errorf("query %s: %w", k, err))
			continue
		}
		p.queries[c.String()] = q
	}
	for k, st := range pf.Statements {
		m := metadata.Method(k)
		if !knownMethods[m] {
			errs = append(errs, fmt.Errorf("unknown statement %q", k))
			continue
		}
		p.statements[m] = st
	}
	for c, s := range p.strategies {
		if _, ok := p.queries.Lookup(c); s == crawl.BulkQueryAll && !ok {
			errs = append(errs, fmt.Errorf("%s uses %s but has no query", c, s))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return p, nil
}

// infoSchema builds information_schema sources with the pack's overrides.
func (p *pack) infoSchema(conn *sql.DB) metadata.Source {
	return metadata.NewInfoSchema(conn, p.bind, p.statements)
}

// dialect returns a dialect using the pack for its defaults. A nil
// newSource uses the information_schema source.
func (p *pack) dialect(name, driver string, newSource func(*sql.DB) metadata.Source, aliases ...string) db.Dialect {
	if newSource == nil {
		newSource = p.infoSchema
	}
	return db.Dialect{
		Name:       name,
		Driver:     driver,
		Aliases:    aliases,
		NewSource:  newSource,
		Strategies: p.strategies,
		Queries:    p.queries,
	}
}

// mustPack loads a pack at init time. Packs are embedded, so a broken one
// is a build defect.
func mustPack(name string) *pack {
	p, err := loadPack(name)
	if err != nil {
		panic(err)
	}
	return p
}
