// Package cmd - serve command
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mua-risk/api"
	"mua-risk/internal/config"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the budget engine over HTTP",
	Long: `Start the HTTP API. Stateless computations are available on POST /compute;
POST /analyses creates an analysis that can be edited incrementally.

Examples:
  mua-risk serve
  mua-risk serve --addr 127.0.0.1:9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(Version, api.Options{
		Defaults:  analysisDefaults(cfg),
		Precision: cfg.Analysis.Precision,
	})
	return server.ListenAndServe(ctx, addr)
}
