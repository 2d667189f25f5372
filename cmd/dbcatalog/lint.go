package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbcatalog/internal/lint"
	"dbcatalog/internal/metadata"
)

func newLintCmd(a *app) *cobra.Command {
	var (
		name       string
		offline    bool
		failOnLint bool
	)
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Crawl the database and lint the catalog",
		Long: `Crawls the configured database and runs every configured linter over the
resulting catalog. With --run-all (the default) every default linter runs, and
linter configs only tune them.`,
		Example: `  dbcatalog lint --type postgres --host localhost --database shop --user app
  dbcatalog lint --config configs/example.yaml --linter-config configs/linters.yaml
  dbcatalog lint --run-all=false --linter-config only-these.yaml --offline`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := a.engine()
			if err != nil {
				return err
			}
			h, err := a.connect(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer h.Close()

			cat, _, err := a.crawl(ctx, h, name)
			if err != nil {
				return err
			}
			var conn metadata.Querier
			if !offline {
				conn = h.DB
			}
			res, err := e.Lint(ctx, cat, conn)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.output == "json" {
				if err := renderJSON(out, newLintResultView(res)); err != nil {
					return err
				}
			} else {
				renderLints(out, res)
			}
			if failOnLint && res.Summary.Total > 0 {
				return fmt.Errorf("%d lints", res.Summary.Total)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "catalog name (defaults to the dialect)")
	f.BoolVar(&offline, "offline", false, "skip linters that query the database")
	f.BoolVar(&failOnLint, "fail", false, "exit non-zero when any lint is reported")
	f.Bool("run-all", true, "run every default linter, not only configured ones")
	f.Bool("parallel", false, "run linters concurrently")
	f.String("linter-config", "", "linter config YAML file")
	return cmd
}

func newLintersCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "linters",
		Short: "List available linters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := newTable(cmd.OutOrStdout(), "Linter", "Severity", "Options", "Description")
			for _, def := range lint.GetAll() {
				opts := fmt.Sprint(def.ConfigKeys)
				if len(def.ConfigKeys) == 0 {
					opts = ""
				}
				desc := def.Description
				if def.OptIn {
					desc += " (opt-in)"
				}
				t.AppendRow([]any{def.ID, def.Severity, opts, desc})
			}
			t.Render()
			return nil
		},
	}
}
