package main

import (
	"github.com/spf13/cobra"
)

func newCrawlCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl database metadata into a catalog",
		Example: `  dbcatalog crawl --type sqlite --database ./shop.db
  dbcatalog crawl --config configs/example.yaml --info-level maximum -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			h, err := a.connect(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer h.Close()

			cat, rep, err := a.crawl(ctx, h, name)
			if err != nil {
				return err
			}
			a.log.Info("crawl finished", "crawl_id", rep.CrawlID, "tables", len(cat.AllTables()), "complete", rep.Complete())

			out := cmd.OutOrStdout()
			if a.output == "json" {
				return renderJSON(out, crawlView{Catalog: newCatalogView(cat), Report: rep})
			}
			renderCatalog(out, cat, rep)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "catalog name (defaults to the dialect)")
	return cmd
}
