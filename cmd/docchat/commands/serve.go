// ABOUTME: Serve command starts the HTTP API server
// ABOUTME: Runs until interrupted, then drains in-flight requests
package commands

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/docchat/internal/api"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Exposes upload, chat, and collection management endpoints. Listens on
DOCCHAT_HOST:DOCCHAT_PORT (default 0.0.0.0:8000) and shuts down
gracefully on SIGINT/SIGTERM.`,
		RunE: runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, cfg, cleanup, err := buildService()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Printf("docchat %s serving on %s", versionInfo.Version, cfg.Addr())
	}
	return api.NewServer(svc, cfg).Run(ctx)
}
