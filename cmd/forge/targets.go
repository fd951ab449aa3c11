package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) targetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the targets defined in the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := a.open(cmd)
			if err != nil {
				return err
			}
			ids, err := p.TargetIDs()
			if err != nil {
				return err
			}
			for _, id := range ids {
				marker := " "
				if id == a.cfg.Target {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, id)
			}
			return nil
		},
	}
}
