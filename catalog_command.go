package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scrapbookAPI/internal/catalog"
)

func newCatalogCommand() *cobra.Command {
	var category, search string

	cmd := &cobra.Command{
		Use:       "catalog <kind>",
		Short:     "List the built-in design assets of one kind",
		Long:      "Kinds: " + strings.Join(catalog.Kinds, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: catalog.Kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(nil)
			if err != nil {
				return err
			}
			res, err := c.Lookup(cmd.Context(), args[0], catalog.Query{Category: category, Search: search})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Total == 0 {
				fmt.Fprintln(out, "No matching items")
				return nil
			}
			fmt.Fprintln(out, renderCatalog(res.Items))
			fmt.Fprintf(out, "%d item(s); categories: %s\n", res.Total, strings.Join(res.Categories, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only items in this category")
	cmd.Flags().StringVar(&search, "search", "", "match name, id or tags")
	return cmd
}
