package main

import (
	"github.com/etay-atar/Sandbox/internal/session"
	"github.com/etay-atar/Sandbox/internal/tui"
	"github.com/spf13/cobra"
)

func newDashboardCmd(opts *globalOptions) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive submissions dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.waitReady(cmd.Context()); err != nil {
				return err
			}

			if metricsAddr == "" {
				metricsAddr = a.cfg.MetricsAddr
			}
			stopServer := a.startStatusServer(metricsAddr)
			defer stopServer()

			c := a.coordinator(session.FromContext(cmd.Context()))
			defer c.Close()

			return tui.Run(cmd.Context(), tui.Deps{
				Coordinator: c,
				Auth:        a.client,
			})
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve health and metrics on this address (default $METRICS_ADDR)")
	return cmd
}
