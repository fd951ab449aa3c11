package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvil-platform/forge/internal/builder"
)

func (a *app) planCmd() *cobra.Command {
	var resources bool

	cmd := &cobra.Command{
		Use:   "plan [component]",
		Short: "Show the build products of a target",
		Long: `Show, for the selected target, which components would be built and the
artifact path each one produces under the target build directory.

Given a component id, only that component and the providers it requires
are planned.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, res, err := a.resolve(cmd)
			if err != nil {
				return err
			}
			selector := builder.All
			if len(args) == 1 {
				selector = args[0]
			}
			products, err := builder.Products(res, selector)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, prod := range products {
				fmt.Fprintf(out, "%-24s %s\n", prod.Component.ID, prod.Path)
				if !resources {
					continue
				}
				files, err := builder.Resources(p.Fs(), prod.Component)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintf(out, "  res %s\n", f)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&resources, "resources", "r", false, "Also list resource files")
	return cmd
}
