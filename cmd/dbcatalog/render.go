package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/crawl"
	"dbcatalog/internal/db"
	"dbcatalog/internal/lint"
)

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}

// renderCatalog prints one row per table followed by the crawl report.
func renderCatalog(w io.Writer, cat *catalog.Catalog, rep *crawl.Report) {
	tables := cat.AllTables()
	if len(tables) == 0 {
		_, _ = fmt.Fprintln(w, "(0 tables)")
	} else {
		t := newTable(w, "Table", "Kind", "Columns", "Primary key", "Indexes", "Foreign keys", "Remarks")
		for _, tbl := range tables {
			pk := ""
			if tbl.PrimaryKey != nil {
				pk = strings.Join(tbl.PrimaryKey.ColumnNames(), ", ")
			}
			t.AppendRow(table.Row{
				tbl.FullName(), tbl.Kind, len(tbl.Columns()), pk,
				len(tbl.Indexes()), len(tbl.ImportedForeignKeys()), tbl.Remarks,
			})
		}
		t.Render()
	}
	if routines := cat.AllRoutines(); len(routines) > 0 {
		t := newTable(w, "Routine", "Kind", "Parameters")
		for _, r := range routines {
			t.AppendRow(table.Row{r.FullName(), r.Kind, len(r.Parameters())})
		}
		t.Render()
	}
	if rep != nil {
		renderReport(w, rep)
	}
}

func renderReport(w io.Writer, rep *crawl.Report) {
	t := newTable(w, "Category", "Strategy", "Status", "Rows", "Filtered", "Dropped", "Elapsed", "Error")
	for _, o := range rep.Outcomes {
		rows := fmt.Sprint(o.Rows)
		if o.Truncated {
			rows += "+"
		}
		t.AppendRow(table.Row{
			o.Category, o.Strategy, o.Status, rows, o.Filtered, o.Dropped,
			o.Elapsed.Round(time.Millisecond), o.Error(),
		})
	}
	t.SetCaption("crawl %s", rep.CrawlID)
	t.Render()
}

func renderLints(w io.Writer, res *lint.Result) {
	if len(res.Lints) == 0 {
		_, _ = fmt.Fprintln(w, "(0 lints)")
	} else {
		t := newTable(w, "Severity", "Target", "Linter", "Message", "Value")
		for _, l := range res.Lints {
			t.AppendRow(table.Row{l.Severity, l.Target, l.ID, l.Message, l.Value})
		}
		t.Render()
	}
	for _, f := range res.Failures {
		_, _ = fmt.Fprintf(w, "linter failed: %v\n", f)
	}
	if len(res.Skipped) > 0 {
		_, _ = fmt.Fprintf(w, "skipped without a connection: %s\n", strings.Join(res.Skipped, ", "))
	}
	_, _ = fmt.Fprintln(w, res.Summary)
}

func renderDialects(w io.Writer, dialects []db.Dialect) {
	t := newTable(w, "Dialect", "Driver", "Aliases", "Strategies")
	for _, d := range dialects {
		var strategies []string
		for _, c := range crawl.AllCategories() {
			if s, ok := d.Strategies[c]; ok {
				strategies = append(strategies, c.String()+"="+s.String())
			}
		}
		t.AppendRow(table.Row{d.Name, d.Driver, strings.Join(d.Aliases, ", "), strings.Join(strategies, " ")})
	}
	t.Render()
}
