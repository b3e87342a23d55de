package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"scrapbookAPI/internal/catalog"
)

const catalogTagsWidth = 32

// renderCatalog draws catalog items as a rounded table. Premium items are
// marked in a centered column and long tag lists wrap.
func renderCatalog(items []catalog.Item) string {
	if len(items) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Name", "Category", "Premium", "Tags"})
	for _, it := range items {
		premium := ""
		if it.Premium {
			premium = "yes"
		}
		tw.AppendRow(table.Row{it.ID, it.Name, it.Category, premium, strings.Join(it.Tags, ", ")})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Premium", Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Name: "Tags", WidthMax: catalogTagsWidth},
	})
	return tw.Render()
}
