package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mxkacsa/execgraph/graph"
	"github.com/mxkacsa/execgraph/translator"
)

func newKindsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the node kinds graph documents may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(a.stdout, "Built-in:")
			for _, k := range graph.Kinds() {
				if k == graph.KindEntry {
					continue
				}
				fmt.Fprintf(a.stdout, "  %s\n", k)
			}

			byCategory := translator.DefaultRegistry().ListNodesByCategory()
			categories := make([]string, 0, len(byCategory))
			for c := range byCategory {
				categories = append(categories, c)
			}
			slices.Sort(categories)
			for _, c := range categories {
				fmt.Fprintf(a.stdout, "%s:\n", c)
				for _, name := range byCategory[c] {
					fmt.Fprintf(a.stdout, "  %s\n", name)
				}
			}
			return nil
		},
	}
}
