package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/martijn/cmdgate/internal/api"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long:  "Start the REST API server for remote command execution",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateServer(); err != nil {
			return err
		}

		services, err := initServices(true)
		if err != nil {
			return err
		}
		defer services.Close()

		server := api.NewServer(cfg, services.AuthService, services.ExecutionService)

		serverErr := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				serverErr <- err
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		services.Log.Info("server ready", "host", cfg.APIHost, "port", cfg.APIPort)

		select {
		case err := <-serverErr:
			return fmt.Errorf("server error: %w", err)
		case <-sigChan:
			services.Log.Info("shutting down")
		}

		// Stop accepting requests, then take down whatever is still running
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		if count := services.ExecutionService.TerminateAll(); count > 0 {
			services.Log.Info("terminated running processes on shutdown", "count", count)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
