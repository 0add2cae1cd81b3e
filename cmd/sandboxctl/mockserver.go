package main

import (
	"log/slog"

	"github.com/etay-atar/Sandbox/internal/adapter/httpserver"
	"github.com/etay-atar/Sandbox/internal/metrics"
	"github.com/spf13/cobra"
)

const defaultMockSecret = "super-secret-key-change-in-production"

func newMockServerCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory analysis backend for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setupConfig(opts)
			if err != nil {
				return err
			}
			closeLog, err := setupLogging(cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			if addr != "" {
				cfg.MockAddr = addr
			}
			if cfg.MockJWTSecret == defaultMockSecret {
				slog.Warn("Mock backend uses the default JWT secret, set MOCK_JWT_SECRET outside local development")
			}

			srv, err := httpserver.NewMockServer(httpserver.MockConfigFrom(cfg, metrics.NewRegistry()))
			if err != nil {
				return err
			}

			slog.Info("Mock backend starting", "addr", cfg.MockAddr, "complete_chance", cfg.MockCompleteChance)
			stop, failed := runServer(srv, "mock")
			select {
			case err := <-failed:
				return err
			case <-cmd.Context().Done():
			}
			slog.Info("Shutdown signal received, cleaning up...")
			stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $MOCK_ADDR)")
	return cmd
}
