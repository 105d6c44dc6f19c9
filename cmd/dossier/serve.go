package main

import (
	"github.com/spf13/cobra"

	"github.com/liberioai/dossier/internal/config"
	"github.com/liberioai/dossier/internal/mcpserver"
	"github.com/liberioai/dossier/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var transport string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server.

Every tools/list request re-reads the workflow documents, so edits show up
without a restart. The workflow list itself is cached for an hour.

Transports:
  stdio   JSON-RPC over stdin/stdout (default)
  sse     Server-sent events on --addr
  http    Streamable HTTP on --addr`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(opts, func(cfg config.Config) error {
				if transport == "" {
					transport = cfg.Server.Transport
				}
				if addr == "" {
					addr = cfg.Server.Address
				}

				cat, err := openCatalog(cfg)
				if err != nil {
					return err
				}

				var srvOpts []mcpserver.Option
				if cfg.History.Enabled {
					svc, closeDB, err := openHistory(cmd.Context(), cfg)
					if err != nil {
						return err
					}
					defer closeDB()
					srvOpts = append(srvOpts, mcpserver.WithRecorder(svc))
				}

				srv := mcpserver.New(cat, version.Version, srvOpts...)
				return srv.Serve(cmd.Context(), transport, addr)
			})
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "transport: stdio, sse, or http (default from config)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for sse and http (default from config)")

	return cmd
}
