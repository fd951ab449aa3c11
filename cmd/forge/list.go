package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/anvil-platform/forge/internal/resolver"
	"github.com/anvil-platform/forge/internal/status"
)

func (a *app) listCmd() *cobra.Command {
	var (
		output string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List components enabled for a target",
		Long: `List the components enabled for the selected target.

With --all, disabled components are listed too, each with the first
requirement that could not be satisfied.

Examples:
  forge list
  forge list --target cross-arm --all
  forge list -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, res, err := a.resolve(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch output {
			case "text":
				printList(out, res, all)
				return nil
			case "yaml":
				data, err := yaml.Marshal(status.List(res))
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(status.List(res))
			default:
				return fmt.Errorf("unknown output format %q (want text, yaml or json)", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, yaml or json")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include disabled components")
	return cmd
}

func printList(out io.Writer, res *resolver.Resolution, all bool) {
	fmt.Fprintf(out, "Target: %s\n\n", res.Target().ID)

	enabled := 0
	for c, st := range res.All() {
		if st.Enabled {
			enabled++
			fmt.Fprintf(out, "  + %-24s %s\n", c.ID, c.Kind)
			continue
		}
		if all {
			fmt.Fprintf(out, "  - %-24s %s  (%s)\n", c.ID, c.Kind, st.Reason)
		}
	}
	fmt.Fprintf(out, "\n%d enabled, %d disabled\n", enabled, res.DisabledCount())
}
