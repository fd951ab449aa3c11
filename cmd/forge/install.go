package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvil-platform/forge/internal/builder"
	"github.com/anvil-platform/forge/internal/install"
)

func (a *app) installCmd() *cobra.Command {
	var prefix, sysroot string

	cmd := &cobra.Command{
		Use:   "install [component]",
		Short: "Install built executables and resources",
		Long: `Copy the build products of the selected target into the install prefix.

The prefix is taken from --prefix, then from the target's "prefix" prop,
then from the configuration. Executables go to <prefix>/bin with a trailing .main or .cli stripped from
their name; resource files go to <prefix>/share/<component>/. With
--sysroot the prefix is placed under that directory.

Examples:
  forge install
  forge install app.main --prefix /usr --sysroot ./rootfs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, p, res, err := a.resolve(cmd)
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

			opts, err := install.Options{Prefix: a.cfg.Install.Prefix, Sysroot: a.cfg.Install.Sysroot}.ForTarget(res.Target())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("prefix") {
				opts.Prefix = prefix
			}
			if cmd.Flags().Changed("sysroot") {
				opts.Sysroot = sysroot
			}

			installed, err := install.New(p.Fs(), opts).Install(ctx, products)
			for _, path := range installed {
				fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", path)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Install prefix (default from the target props or config, else /)")
	cmd.Flags().StringVar(&sysroot, "sysroot", "", "Directory the prefix is placed under")
	return cmd
}
