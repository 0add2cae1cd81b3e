package main

import (
	"fmt"

	"github.com/etay-atar/Sandbox/internal/platform/version"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	apiURL string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "sandboxctl",
		Short:         "Console for the malware analysis sandbox",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "backend base URL (overrides SANDBOX_API_URL)")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newSubmissionsCmd(opts),
		newStatusCmd(opts),
		newReportCmd(opts),
		newUploadCmd(opts),
		newWatchCmd(opts),
		newDashboardCmd(opts),
		newMockServerCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get())
		},
	}
}
