package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// serveOptions are the flags shared by the root and serve commands
type serveOptions struct {
	configPath string
	port       string
}

func (o *serveOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.configPath, "config", "c", "", "Path to YAML configuration file (default $CONFIG_FILE)")
	cmd.Flags().StringVarP(&o.port, "port", "p", "", "Port to listen on (overrides PORT)")
}

func buildServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway server",
		Long: `Start the gateway server.

The server accepts websocket connections on /ws, computes trip paths through
the route service (or a straight-line fallback) and records finished trips in
the configured trip store. It also serves a status page on /, health on
/healthz, trip history on /api/trips and Prometheus metrics on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "navsocket %s (commit %s)\n", version, commit)
		},
	}
}
