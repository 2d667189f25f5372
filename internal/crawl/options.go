package crawl

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dbcatalog/internal/filter"
	"dbcatalog/internal/logger"
	"dbcatalog/pkg/config"
)

// Queries holds vendor queries keyed by category key.
type Queries map[string]string

// Lookup returns the non-blank query for c.
func (q Queries) Lookup(c Category) (string, bool) {
	s, ok := q[c.String()]
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Limits are the inclusion rules applied while merging rows. Nil rules
// include everything.
type Limits struct {
	Schemas    filter.Rule
	Tables     filter.Rule
	Columns    filter.Rule
	Routines   filter.Rule
	Parameters filter.Rule
	// TableTypes keeps only the listed table types, after normalisation.
	// Empty keeps all.
	TableTypes []string
}

// Options configure a crawl.
type Options struct {
	Logger    *slog.Logger
	InfoLevel InfoLevel
	// Strategies overrides the strategy per category. Missing categories
	// use PerObjectMetadata.
	Strategies   map[Category]Strategy
	Queries      Queries
	Limits       Limits
	NaturalOrder bool
	QueryTimeout time.Duration
	// RowLimit caps the rows merged per category. Zero is unlimited.
	RowLimit    int
	Diagnostics bool
}

// Strategy returns the strategy for c.
func (o Options) Strategy(c Category) Strategy {
	if s, ok := o.Strategies[c]; ok {
		return s
	}
	return PerObjectMetadata
}

// WithDefaults layers dialect strategies and queries under the ones already
// set in o.
func (o Options) WithDefaults(strategies map[Category]Strategy, queries Queries) Options {
	merged := make(map[Category]Strategy, len(strategies)+len(o.Strategies))
	for c, s := range strategies {
		merged[c] = s
	}
	for c, s := range o.Strategies {
		merged[c] = s
	}
	o.Strategies = merged

	q := make(Queries, len(queries)+len(o.Queries))
	for k, v := range queries {
		q[k] = v
	}
	for k, v := range o.Queries {
		q[k] = v
	}
	o.Queries = q
	return o
}

func (o Options) normalized() Options {
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	o.Limits.Schemas = filter.OrAll(o.Limits.Schemas)
	o.Limits.Tables = filter.OrAll(o.Limits.Tables)
	o.Limits.Columns = filter.OrAll(o.Limits.Columns)
	o.Limits.Routines = filter.OrAll(o.Limits.Routines)
	o.Limits.Parameters = filter.OrAll(o.Limits.Parameters)
	return o
}

func ruleFromConfig(name string, rc config.RuleConfig) (filter.Rule, error) {
	if rc.ExcludeAll {
		return filter.ExcludeAll, nil
	}
	r, err := filter.New(rc.Include, rc.Exclude)
	if err != nil {
		return nil, fmt.Errorf("%s rule: %w", name, err)
	}
	return r, nil
}

// NewOptions converts the crawl section of the application config.
func NewOptions(cfg config.CrawlConfig, log *slog.Logger) (Options, error) {
	opts := Options{
		Logger:       log,
		NaturalOrder: cfg.NaturalOrder,
		QueryTimeout: time.Duration(cfg.QueryTimeout) * time.Second,
		RowLimit:     cfg.RowLimit,
		Diagnostics:  cfg.Diagnostics,
		Strategies:   map[Category]Strategy{},
		Queries:      Queries{},
	}
	var errs []error

	level, err := ParseInfoLevel(cfg.InfoLevel)
	errs = append(errs, err)
	opts.InfoLevel = level

	for k, v := range cfg.Strategies {
		c, err := ParseCategory(k)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s, err := ParseStrategy(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
			continue
		}
		opts.Strategies[c] = s
	}
	for k, v := range cfg.VendorQueries {
		c, err := ParseCategory(k)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		opts.Queries[c.String()] = v
	}

	l := cfg.Limits
	opts.Limits.Schemas, err = ruleFromConfig("schemas", l.Schemas)
	errs = append(errs, err)
	opts.Limits.Tables, err = ruleFromConfig("tables", l.Tables)
	errs = append(errs, err)
	opts.Limits.Columns, err = ruleFromConfig("columns", l.Columns)
	errs = append(errs, err)
	opts.Limits.Routines, err = ruleFromConfig("routines", l.Routines)
	errs = append(errs, err)
	opts.Limits.Parameters, err = ruleFromConfig("parameters", l.Parameters)
	errs = append(errs, err)
	for _, t := range cfg.TableTypes {
		opts.Limits.TableTypes = append(opts.Limits.TableTypes, normalizeTableType(t))
	}

	if err := errors.Join(errs...); err != nil {
		return Options{}, fmt.Errorf("crawl options: %w", err)
	}
	return opts, nil
}
