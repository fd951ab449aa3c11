package main

import (
	"github.com/spf13/cobra"

	"github.com/anvil-platform/forge/internal/graph"
)

func (a *app) graphCmd() *cobra.Command {
	var (
		opts   graph.Options
		output string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Write the dependency graph of a target as Graphviz DOT",
		Long: `Write the dependency graph of the selected target in the Graphviz DOT
language. Edges from an interface to the provider the target routes it to
are drawn in blue.

Examples:
  forge graph | dot -Tsvg > graph.svg
  forge graph --scope app.main --only-libs
  forge graph --show-disabled -o graph.dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, res, err := a.resolve(cmd)
			if err != nil {
				return err
			}
			g, err := graph.Build(res, opts)
			if err != nil {
				return err
			}

			if output == "" {
				return g.WriteDOT(cmd.OutOrStdout())
			}
			f, err := a.fs.Create(output)
			if err != nil {
				return err
			}
			if err := g.WriteDOT(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&opts.Scope, "scope", "", "Only show this component and what it requires")
	cmd.Flags().BoolVar(&opts.HideExecutables, "only-libs", false, "Hide executables")
	cmd.Flags().BoolVar(&opts.ShowDisabled, "show-disabled", false, "Show disabled components with their reason")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
