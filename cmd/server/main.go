// Package main runs the navsocket trip session gateway.
//
// Start the server with defaults (port 8080, sqlite trip store):
//
//	server
//	server serve --config navsocket.yaml --port 9000
//
// Environment variables (a .env file is loaded when present) override the
// YAML file; see internal/config for the full list.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Build information, populated by ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse HEAD)" ./cmd/server
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// Load .env file (ignore error if not exists, e.g. in production)
	_ = godotenv.Load()

	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	opts := &serveOptions{}
	root := &cobra.Command{
		Use:           "server",
		Short:         "Realtime trip session gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	opts.bind(root)

	root.AddCommand(buildServeCmd(), buildVersionCmd())
	return root
}
