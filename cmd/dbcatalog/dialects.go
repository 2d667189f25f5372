package main

import (
	"github.com/spf13/cobra"

	"dbcatalog/internal/db"
)

type dialectView struct {
	Name    string   `json:"name"`
	Driver  string   `json:"driver"`
	Aliases []string `json:"aliases,omitempty"`
}

func dialectViews() []dialectView {
	var out []dialectView
	for _, d := range db.RegisteredDialects() {
		out = append(out, dialectView{Name: d.Name, Driver: d.Driver, Aliases: d.Aliases})
	}
	return out
}

func newDialectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List registered database dialects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.output == "json" {
				return renderJSON(cmd.OutOrStdout(), dialectViews())
			}
			renderDialects(cmd.OutOrStdout(), db.RegisteredDialects())
			return nil
		},
	}
}
