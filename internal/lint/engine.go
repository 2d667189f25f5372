package lint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/logger"
	"dbcatalog/internal/metadata"
)

// UnknownLinterError is returned by New for a config naming no registered
// linter.
type UnknownLinterError struct {
	ID string
}

func (e *UnknownLinterError) Error() string {
	return fmt.Sprintf("unknown linter %q", e.ID)
}

// RuleFailure records a linter that returned an error or panicked. Lints
// of other linters are unaffected.
type RuleFailure struct {
	ID    string
	Err   error
	Panic bool
}

func (f *RuleFailure) Error() string {
	if f.Panic {
		return fmt.Sprintf("linter %s panicked: %v", f.ID, f.Err)
	}
	return fmt.Sprintf("linter %s: %v", f.ID, f.Err)
}

func (f *RuleFailure) Unwrap() error { return f.Err }

// Result is the outcome of one Lint call.
type Result struct {
	Lints    []Lint         `json:"lints"`
	Summary  Summary        `json:"summary"`
	Failures []*RuleFailure `json:"-"`
	// Skipped lists linters that needed a connection and had none.
	Skipped []string `json:"skipped,omitempty"`
	// Size is the number of linter instances the engine holds.
	Size int `json:"size"`
}

// Engine holds configured linter instances, in run order.
type Engine struct {
	instances []*instance
	log       *slog.Logger
	parallel  bool
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithParallel runs linter instances concurrently.
func WithParallel(parallel bool) Option {
	return func(e *Engine) { e.parallel = parallel }
}

// New builds an engine from configs. Configured instances come first, in
// config order. With runAll, every other registered linter that is not
// opt-in follows with default settings, in registration order.
func New(configs []LinterConfig, runAll bool, opts ...Option) (*Engine, error) {
	e := &Engine{log: logger.Discard()}
	for _, o := range opts {
		o(e)
	}

	var errs []error
	configured := map[string]bool{}
	for _, c := range configs {
		def, ok := GetByID(c.ID)
		if !ok {
			errs = append(errs, &UnknownLinterError{ID: c.ID})
			continue
		}
		configured[c.ID] = true
		if !c.IsEnabled() {
			continue
		}
		inst, err := newInstance(def, c)
		if err != nil {
			errs = append(errs, fmt.Errorf("linter %s: %w", c.ID, err))
			continue
		}
		e.instances = append(e.instances, inst)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if runAll {
		for _, def := range GetAll() {
			if configured[def.ID] || def.OptIn {
				continue
			}
			inst, err := newInstance(def, LinterConfig{ID: def.ID})
			if err != nil {
				return nil, err
			}
			e.instances = append(e.instances, inst)
		}
	}
	return e, nil
}

func newInstance(def RuleDef, c LinterConfig) (*instance, error) {
	tables, columns, err := c.rules()
	if err != nil {
		return nil, err
	}
	inst := &instance{
		def:       def,
		severity:  def.Severity,
		threshold: c.Threshold,
		tables:    tables,
		columns:   columns,
		options:   c.Options,
	}
	if c.Severity != nil {
		inst.severity = *c.Severity
	}
	return inst, nil
}

// Size returns the number of linter instances.
func (e *Engine) Size() int { return len(e.instances) }

// IDs returns the instance linter ids in run order.
func (e *Engine) IDs() []string {
	out := make([]string, len(e.instances))
	for i, inst := range e.instances {
		out[i] = inst.def.ID
	}
	return out
}

// Lint runs every instance over cat, which must be frozen. db may be nil,
// in which case linters that need a connection are skipped. The returned
// lints are sorted by target, linter id and message.
func (e *Engine) Lint(ctx context.Context, cat *catalog.Catalog, db metadata.Querier) (*Result, error) {
	if cat == nil || cat.State() != catalog.StateFrozen {
		return nil, catalog.ErrNotFrozen
	}

	runs := make([]*Run, len(e.instances))
	failures := make([]*RuleFailure, len(e.instances))
	res := &Result{Size: len(e.instances)}

	for i, inst := range e.instances {
		if inst.def.NeedsConnection && db == nil {
			e.log.Info("skipping linter without a connection", "linter", inst.def.ID)
			res.Skipped = append(res.Skipped, inst.def.ID)
			continue
		}
		runs[i] = &Run{Catalog: cat, DB: db, inst: inst}
	}

	exec := func(i int) {
		if runs[i] == nil {
			return
		}
		if f := e.check(ctx, runs[i]); f != nil {
			failures[i] = f
			runs[i].lints = nil
		}
	}

	if e.parallel {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := range runs {
			g.Go(func() error {
				exec(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range runs {
			exec(i)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, r := range runs {
		if f := failures[i]; f != nil {
			res.Failures = append(res.Failures, f)
			continue
		}
		if r != nil {
			res.Lints = append(res.Lints, r.lints...)
		}
	}
	slices.SortStableFunc(res.Lints, compareLints)
	res.Summary = summarize(res.Lints)
	return res, nil
}

// check runs one instance, turning an error or panic into a RuleFailure.
func (e *Engine) check(ctx context.Context, r *Run) (failure *RuleFailure) {
	id := r.ID()
	defer func() {
		if p := recover(); p != nil {
			failure = &RuleFailure{ID: id, Err: fmt.Errorf("%v", p), Panic: true}
			e.log.Error("linter panicked", "linter", id, "panic", p)
		}
	}()
	if err := ctx.Err(); err != nil {
		return &RuleFailure{ID: id, Err: err}
	}
	if err := r.inst.def.Check(ctx, r); err != nil {
		e.log.Error("linter failed", "linter", id, "error", err)
		return &RuleFailure{ID: id, Err: err}
	}
	return nil
}

// LintCatalog builds an engine and runs it once.
func LintCatalog(ctx context.Context, cat *catalog.Catalog, db metadata.Querier, configs []LinterConfig, runAll bool, opts ...Option) (*Result, error) {
	e, err := New(configs, runAll, opts...)
	if err != nil {
		return nil, err
	}
	return e.Lint(ctx, cat, db)
}
