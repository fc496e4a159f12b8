package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Rana718/tablekeep/internal/studio"
)

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Serve the tables over a local HTTP API",
	Long: `
Launch tablekeep studio, a local HTTP API for viewing and editing the
tables. Changes are saved just like changes made from the CLI. Prometheus
metrics are served on /metrics.

Examples:
  tablekeep studio
  tablekeep studio --port 3000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withWorkspace(cmd, func(ws *workspace) error {
			port := ws.cfg.Studio.Port
			if cmd.Flags().Changed("port") {
				port, _ = cmd.Flags().GetInt("port")
			}
			browser, _ := cmd.Flags().GetBool("browser")

			server, err := studio.NewServer(ws.store, ws.recorder, slog.Default(), port)
			if err != nil {
				return err
			}

			errc := make(chan error, 1)
			go func() { errc <- server.Start(browser) }()

			select {
			case err := <-errc:
				return fmt.Errorf("studio stopped: %w", err)
			case <-ctx.Done():
			}

			fmt.Println()
			fmt.Println("👋 Shutting down studio")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
				slog.Debug("studio listener returned", "error", err)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(studioCmd)
	studioCmd.Flags().IntP("port", "p", 5555, "Port to run studio on (default from config)")
	studioCmd.Flags().BoolP("browser", "b", false, "Open browser automatically")
}
