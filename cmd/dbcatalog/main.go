// Command dbcatalog crawls database metadata into a catalog, lints it, and
// serves both over HTTP.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/crawl"
	"dbcatalog/internal/db"
	_ "dbcatalog/internal/db/dialects"
	"dbcatalog/internal/lint"
	_ "dbcatalog/internal/lint/linters"
	"dbcatalog/internal/logger"
	"dbcatalog/pkg/config"
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfgFile string
	envFile string
	output  string

	cfg config.AppConfig
	log *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Fatal("dbcatalog failed", "error", err)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "dbcatalog",
		Short: "Crawl and lint database metadata",
		Long: `dbcatalog reads schemas, tables, columns, keys, routines and triggers
through a vendor-neutral layer, assembles them into a catalog and runs lint
checks over it.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "path to config YAML")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the config")
	pf.StringVarP(&a.output, "output", "o", "text", "output format (text|json)")
	pf.String("type", "", "database type (postgres,pgx,mysql,sqlite,sqlserver,godror,duckdb)")
	pf.String("dsn", "", "explicit DSN")
	pf.String("host", "", "database host")
	pf.Int("port", 0, "database port")
	pf.String("user", "", "database user")
	pf.String("password", "", "database password")
	pf.String("database", "", "database name, or file path for sqlite and duckdb")
	pf.Int("timeout", 10, "connect timeout in seconds")
	pf.String("info-level", "", "minimum|standard|detailed|maximum")
	pf.StringSlice("table-types", nil, "table types to keep, e.g. TABLE,VIEW")
	pf.Bool("natural-order", false, "keep tables in discovery order")
	pf.Int("query-timeout", 0, "per-query timeout in seconds")
	pf.Int("deadline", 0, "overall crawl deadline in seconds")
	pf.Int("row-limit", 0, "cap on rows merged per category")
	pf.Bool("diagnostics", false, "log dropped rows")
	pf.String("log-level", "", "debug|info|warn|error")
	pf.String("log-format", "", "text|json")

	root.AddCommand(newCrawlCmd(a))
	root.AddCommand(newLintCmd(a))
	root.AddCommand(newDialectsCmd(a))
	root.AddCommand(newLintersCmd(a))
	root.AddCommand(newServeCmd(a))
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(cmd.ErrOrStderr(), level, cfg.Log.Format)
	logger.SetDefault(a.log)
	return nil
}

// crawlOptions builds crawl options from the loaded configuration.
func (a *app) crawlOptions() (crawl.Options, error) {
	return crawl.NewOptions(a.cfg.Crawl, a.log)
}

// connect opens the configured database.
func (a *app) connect(ctx context.Context, dbc config.DBConfig) (*db.Handle, error) {
	driver, dsn, err := config.BuildDriverAndDSN(dbc)
	if err != nil {
		return nil, err
	}
	return db.Connect(ctx, driver, dsn, cmp.Or(dbc.Timeout, 10))
}

// crawlContext bounds a whole crawl by the configured deadline. Each
// metadata call still gets its own query timeout inside the crawl.
func (a *app) crawlContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := a.cfg.Crawl.Deadline; d > 0 {
		return context.WithTimeout(ctx, time.Duration(d)*time.Second)
	}
	return ctx, func() {}
}

// crawl runs one crawl over h within the crawl deadline.
func (a *app) crawl(ctx context.Context, h *db.Handle, name string) (*catalog.Catalog, *crawl.Report, error) {
	opts, err := a.crawlOptions()
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := a.crawlContext(ctx)
	defer cancel()
	if name == "" {
		name = h.Dialect.Name
	}
	a.log.Info("crawling", "dialect", h.Dialect.Name, "catalog", name)
	return crawl.Crawl(ctx, h.Connection(name), h.Options(opts))
}

// linterConfigs returns the inline linter configs followed by those of the
// configured linter file.
func (a *app) linterConfigs() ([]lint.LinterConfig, error) {
	configs, err := lint.ConfigsFromMaps(a.cfg.Lint.Linters)
	if err != nil {
		return nil, err
	}
	if path := a.cfg.Lint.ConfigFile; path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open linter config: %w", err)
		}
		defer f.Close()
		more, err := lint.ParseConfigs(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		configs = append(configs, more...)
	}
	return configs, nil
}

// engine builds a lint engine from the configuration.
func (a *app) engine() (*lint.Engine, error) {
	configs, err := a.linterConfigs()
	if err != nil {
		return nil, err
	}
	return lint.New(configs, a.cfg.Lint.RunAll, lint.WithLogger(a.log), lint.WithParallel(a.cfg.Lint.Parallel))
}
