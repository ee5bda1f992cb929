package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mxkacsa/execgraph/internal/ctxlog"
	"github.com/mxkacsa/execgraph/parse"
	"github.com/mxkacsa/execgraph/translator"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [files or directories...]",
		Short: "Check graph documents without writing code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctxlog.FromContext(cmd.Context())
			graphs, err := parse.NewLoader(nil).LoadPaths(cmd.Context(), args...)
			if err != nil {
				return err
			}

			var failed []error
			for _, g := range graphs {
				if err := translator.Validate(g); err != nil {
					logger.Debug("graph is invalid", "graph", g.FullName(), "error", err)
					failed = append(failed, fmt.Errorf("%s: %w", g.FullName(), err))
					continue
				}
				fmt.Fprintf(a.stdout, "ok %s\n", g.FullName())
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d graphs are invalid:\n%w", len(failed), len(graphs), errors.Join(failed...))
			}
			return nil
		},
	}
}
