package commands

import (
	"umami-loadtest/internal/catalog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Prints every page the load test visits.",
	Run: func(cmd *cobra.Command, args []string) {
		t := newTable("Pages")
		t.AppendHeader(table.Row{"Page", "Path (en)", "Title (en)", "Path (es)", "Title (es)"})
		for _, p := range []struct {
			name string
			page catalog.Page
		}{
			{"front", catalog.FrontPage},
			{"articles", catalog.ArticleListing},
			{"recipes", catalog.RecipeListing},
			{"contact", catalog.ContactForm},
		} {
			t.AppendRow(table.Row{
				p.name,
				p.page.Path(catalog.EN), p.page.Title(catalog.EN),
				p.page.Path(catalog.ES), p.page.Title(catalog.ES),
			})
		}
		t.Render()

		t = newTable("Nodes")
		t.AppendHeader(table.Row{"ID", "Type", "Path (en)", "Title (en)", "Path (es)", "Title (es)"})
		for _, node := range catalog.All() {
			t.AppendRow(table.Row{
				node.ID,
				node.Type.String(),
				node.URL(catalog.EN), node.Title(catalog.EN),
				node.URL(catalog.ES), node.Title(catalog.ES),
			})
		}
		t.Render()
	},
}
