// Package crawl retrieves database metadata category by category and
// assembles it into a catalog.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/metadata"
)

// Connection is what a crawl reads from. DB runs vendor queries for
// bulk-query-all and may be nil when no category uses that strategy.
type Connection struct {
	Name    string
	Dialect string
	DB      metadata.Querier
	Source  metadata.Source
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// Crawl builds a frozen catalog from conn.
//
// Categories that fail are recorded in the report and the crawl goes on.
// A broken connection stops it: Crawl then returns a nil catalog, the report
// so far and an error wrapping ErrConnection. When ctx ends between phases,
// Crawl returns the catalog built so far, frozen, with ctx.Err().
func Crawl(ctx context.Context, conn Connection, opts Options) (*catalog.Catalog, *Report, error) {
	if conn.Source == nil {
		return nil, nil, errors.New("crawl: connection has no metadata source")
	}
	opts = opts.normalized()
	log := opts.Logger

	cat := catalog.New(conn.Name, opts.NaturalOrder)
	cat.Info.Dialect = conn.Dialect
	cat.Info.Started = time.Now()
	report := &Report{CrawlID: cat.Info.ID}

	if p, ok := conn.DB.(pinger); ok {
		if err := p.PingContext(ctx); err != nil {
			return nil, report, fmt.Errorf("%w: ping: %w", ErrConnection, err)
		}
	}
	if err := cat.BeginPopulating(); err != nil {
		return nil, report, err
	}

	c := &crawler{
		opts: opts,
		log:  log,
		retrievers: map[Strategy]retriever{
			PerObjectMetadata: perObject{src: conn.Source, timeout: opts.QueryTimeout, log: log},
			BulkMetadataAll:   bulkMetadata{src: conn.Source, timeout: opts.QueryTimeout},
			BulkQueryAll:      bulkQuery{db: conn.DB, queries: opts.Queries, timeout: opts.QueryTimeout},
		},
	}
	b := newBuilder(cat, opts.Limits)

	log.Info("Crawl started", "crawl", cat.Info.ID.String(), "dialect", conn.Dialect, "level", opts.InfoLevel.String())
	for _, p := range b.phases() {
		if err := ctx.Err(); err != nil {
			log.Warn("Crawl cancelled", "before", p.category.String())
			cat.Info.Finished = time.Now()
			cat.Freeze()
			return cat, report, err
		}
		out := c.run(ctx, p)
		report.add(out)
		if out.Status == StatusFailed {
			log.Error("Crawl aborted", "category", p.category.String(), "err", out.Err)
			return nil, report, fmt.Errorf("%w: %s: %w", ErrConnection, p.category, out.Err)
		}
	}

	cat.Info.Finished = time.Now()
	cat.Freeze()
	log.Info("Crawl finished",
		"schemas", len(cat.Schemas()),
		"tables", len(cat.AllTables()),
		"routines", len(cat.AllRoutines()),
		"elapsed", cat.Info.Finished.Sub(cat.Info.Started).Round(time.Millisecond).String())
	return cat, report, nil
}

type crawler struct {
	opts       Options
	log        *slog.Logger
	retrievers map[Strategy]retriever
}

// run retrieves and merges one category. Errors never escape: they end up
// in the outcome.
func (c *crawler) run(ctx context.Context, p *phase) (out Outcome) {
	strategy := c.opts.Strategy(p.category)
	out = Outcome{Category: p.category, Strategy: strategy}
	log := c.log.With("category", p.category.String())

	if !c.opts.InfoLevel.Includes(p.category) {
		out.Status = StatusNotRequested
		return out
	}
	if p.excluded() {
		out.Status = StatusExcluded
		log.Debug("Category excluded")
		return out
	}

	start := time.Now()
	defer func() { out.Elapsed = time.Since(start) }()

	r, ok := c.retrievers[strategy]
	if !ok {
		out.Status = StatusMisconfigured
		out.Err = fmt.Errorf("no retriever for strategy %s", strategy)
		return out
	}
	res := r.retrieve(ctx, p)
	if res.Err != nil {
		out.Err = res.Err
		out.Status = classify(res.Err)
		c.logOutcome(log, out)
		return out
	}

	rows := res.Rows
	var refusal error
loop:
	for rows.Next() {
		if c.opts.RowLimit > 0 && out.Rows >= c.opts.RowLimit {
			out.Truncated = true
			break
		}
		row := rows.Row()
		switch p.merge(row) {
		case refused:
			refusal = catalog.ErrFrozen
			break loop
		case kept:
			out.Rows++
		case filtered:
			out.Filtered++
		case dropped:
			out.Dropped++
			if c.opts.Diagnostics {
				log.Debug("Row dropped", "row", row.Values())
			}
		}
	}
	err := rows.Err()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	if refusal != nil {
		err = errors.Join(refusal, err)
	}
	out.Err = err
	out.Status = classify(err)
	if out.Truncated {
		log.Warn("Row limit reached", "limit", c.opts.RowLimit)
	}
	c.logOutcome(log, out)
	return out
}

func (c *crawler) logOutcome(log *slog.Logger, out Outcome) {
	switch out.Status {
	case StatusComplete:
		log.Debug("Category retrieved", "strategy", out.Strategy.String(),
			"rows", out.Rows, "filtered", out.Filtered, "dropped", out.Dropped)
	case StatusUnsupported:
		log.Info("Category not supported by this database", "strategy", out.Strategy.String(), "err", out.Err)
	case StatusMisconfigured:
		log.Warn("Category misconfigured", "strategy", out.Strategy.String(), "err", out.Err)
	case StatusIncomplete:
		log.Warn("Category incomplete", "strategy", out.Strategy.String(), "rows", out.Rows, "err", out.Err)
	}
}
