package main

import (
	"github.com/spf13/cobra"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/anvil-platform/forge/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve resolved state and metrics over HTTP",
		Long: `Serve a read-only HTTP API over the project:

  GET /api/v1/targets/
  GET /api/v1/targets/{target}/components[?enabled=true|false]
  GET /api/v1/targets/{target}/components/{component}
  GET /api/v1/targets/{target}/graph.dot[?scope=&only_libs=&show_disabled=]
  GET /metrics
  GET /healthz

Manifests are read once at startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, p, err := a.open(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Server.Addr
			}
			return server.New(p, ctrllog.FromContext(ctx)).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, else :8080)")
	return cmd
}
