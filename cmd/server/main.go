package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clusterflow/internal/infrastructure/container"
	"clusterflow/internal/infrastructure/httpapi"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the trade cluster API server",
	Long: `Serves the backfill and volume-cluster endpoints over HTTP.
Trades are stored in a local SQLite database; configuration comes from
environment variables (see internal/infrastructure/config).`,
	RunE: runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := container.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	defer c.Shutdown()

	router := httpapi.NewRouter(c.Handler, c.Logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", c.Config.Server.Port),
		Handler: router,
	}

	errChan := make(chan error, 1)
	go func() {
		c.Logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigChan:
		c.Logger.Info("Received shutdown signal", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	c.Logger.Info("Server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
