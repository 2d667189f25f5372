package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dbcatalog/internal/metadata"
)

// Strategy selects how one category is retrieved.
type Strategy int

const (
	// PerObjectMetadata issues one Source call per parent object.
	PerObjectMetadata Strategy = iota
	// BulkMetadataAll issues a single Source call for every object.
	BulkMetadataAll
	// BulkQueryAll runs a vendor query configured for the category.
	BulkQueryAll
)

var strategyNames = [...]string{"per-object-metadata", "bulk-metadata-all", "bulk-query-all"}

var strategyAliases = map[string]Strategy{
	"metadata":            PerObjectMetadata,
	"per_object":          PerObjectMetadata,
	"metadata_all":        BulkMetadataAll,
	"bulk_metadata":       BulkMetadataAll,
	"data_dictionary_all": BulkQueryAll,
	"query_all":           BulkQueryAll,
}

func (s Strategy) String() string {
	if s < PerObjectMetadata || s > BulkQueryAll {
		return fmt.Sprintf("strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// ParseStrategy accepts canonical names and the short aliases used in
// configuration files.
func ParseStrategy(s string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, n := range strategyNames {
		if n == key {
			return Strategy(i), nil
		}
	}
	if st, ok := strategyAliases[key]; ok {
		return st, nil
	}
	return 0, fmt.Errorf("unknown retrieval strategy %q", s)
}

// MarshalText renders the canonical name.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a strategy name or alias.
func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Result is what a retriever hands the orchestrator: a row stream or the
// error that prevented one. Errors met while streaming surface from
// Rows.Err.
type Result struct {
	Rows metadata.Rows
	Err  error
}

type retriever interface {
	retrieve(ctx context.Context, p *phase) Result
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

type cancelRows struct {
	metadata.Rows
	cancel context.CancelFunc
}

func (c *cancelRows) Close() error {
	err := c.Rows.Close()
	c.cancel()
	return err
}

func callOnce(ctx context.Context, src metadata.Source, p *phase, o metadata.Object, timeout time.Duration) (metadata.Rows, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	rows, err := p.call(src, ctx, o)
	if err != nil {
		cancel()
		return nil, err
	}
	return &cancelRows{Rows: rows, cancel: cancel}, nil
}

// bulkMetadata answers the whole category with one wildcard call.
type bulkMetadata struct {
	src     metadata.Source
	timeout time.Duration
}

func (b bulkMetadata) retrieve(ctx context.Context, p *phase) Result {
	rows, err := callOnce(ctx, b.src, p, metadata.All, b.timeout)
	return Result{Rows: rows, Err: err}
}

// bulkQuery runs the configured vendor query for the category.
type bulkQuery struct {
	db      metadata.Querier
	queries Queries
	timeout time.Duration
}

func (b bulkQuery) retrieve(ctx context.Context, p *phase) Result {
	q, ok := b.queries.Lookup(p.category)
	if !ok {
		return Result{Err: &QueryMissingError{Category: p.category}}
	}
	if b.db == nil {
		return Result{Err: fmt.Errorf("%w: no connection for vendor queries", metadata.ErrUnsupported)}
	}
	ctx, cancel := withTimeout(ctx, b.timeout)
	sqlRows, err := b.db.QueryContext(ctx, q)
	if err != nil {
		cancel()
		return Result{Err: fmt.Errorf("vendor query %s: %w", p.category, err)}
	}
	rows, err := metadata.FromSQL(sqlRows, cancel)
	return Result{Rows: rows, Err: err}
}

// perObject calls the Source once per parent. Categories without parents
// fall back to a single wildcard call.
type perObject struct {
	src     metadata.Source
	timeout time.Duration
	log     *slog.Logger
}

func (r perObject) retrieve(ctx context.Context, p *phase) Result {
	if p.parents == nil {
		return bulkMetadata{src: r.src, timeout: r.timeout}.retrieve(ctx, p)
	}
	return Result{Rows: &objectRows{
		ctx:     ctx,
		r:       r,
		p:       p,
		parents: p.parents(),
	}}
}

// objectRows chains the per-parent streams lazily. An unsupported call
// ends the stream; other failures are kept and the next parent is tried.
type objectRows struct {
	ctx     context.Context
	r       perObject
	p       *phase
	parents []metadata.Object
	next    int
	cur     metadata.Rows
	row     *metadata.Row
	errs    []error
}

func objectName(o metadata.Object) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{o.Catalog, o.Schema, o.Name} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}

func (o *objectRows) Next() bool {
	for {
		if o.cur != nil {
			if o.cur.Next() {
				o.row = o.cur.Row()
				return true
			}
			if err := o.cur.Err(); err != nil {
				o.fail(o.parents[o.next-1], err)
			}
			_ = o.cur.Close()
			o.cur = nil
		}
		if o.next >= len(o.parents) || o.ctx.Err() != nil {
			return false
		}
		obj := o.parents[o.next]
		o.next++
		rows, err := callOnce(o.ctx, o.r.src, o.p, obj, o.r.timeout)
		if err != nil {
			o.fail(obj, err)
			continue
		}
		o.cur = rows
	}
}

func (o *objectRows) fail(obj metadata.Object, err error) {
	o.errs = append(o.errs, fmt.Errorf("%s: %w", objectName(obj), err))
	switch {
	case errors.Is(err, metadata.ErrUnsupported):
		o.r.log.Info("Metadata call unsupported, skipping remaining objects",
			"category", o.p.category.String(), "object", objectName(obj))
		o.next = len(o.parents)
	case isFatal(err):
		o.next = len(o.parents)
	}
}

func (o *objectRows) Row() *metadata.Row { return o.row }

func (o *objectRows) Err() error {
	if err := o.ctx.Err(); err != nil && o.next < len(o.parents) {
		return errors.Join(append(o.errs, err)...)
	}
	return errors.Join(o.errs...)
}

func (o *objectRows) Close() error {
	o.next = len(o.parents)
	if o.cur != nil {
		err := o.cur.Close()
		o.cur = nil
		return err
	}
	return nil
}
