package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/etay-atar/Sandbox/internal/domain"
	"github.com/spf13/cobra"
)

func newSubmissionsCmd(opts *globalOptions) *cobra.Command {
	var skip, limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "submissions",
		Aliases: []string{"ls"},
		Short:   "List submissions, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()
			mgr, err := requireSession(cmd.Context())
			if err != nil {
				return err
			}

			subs, err := a.client.ListPage(cmd.Context(), mgr.RequestContext(), skip, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), subs)
			}
			return writeSubmissions(cmd.OutOrStdout(), subs)
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "number of submissions to skip")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of submissions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <submission-id>",
		Short: "Show analysis progress of a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()
			mgr, err := requireSession(cmd.Context())
			if err != nil {
				return err
			}

			st, err := a.client.GetStatus(cmd.Context(), mgr.RequestContext(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d%%\n", st.Status, st.Progress)
			return nil
		},
	}
}

func newReportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report <submission-id>",
		Short: "Print the analysis report of a completed submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()
			mgr, err := requireSession(cmd.Context())
			if err != nil {
				return err
			}

			report, err := a.client.GetReport(cmd.Context(), mgr.RequestContext(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}

func writeSubmissions(w io.Writer, subs []domain.Submission) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tVERDICT\tCREATED\tFILE")
	for _, s := range subs {
		verdict := s.FinalVerdict
		if verdict == "" {
			verdict = domain.VerdictPending
		}
		created := ""
		if !s.CreatedAt.IsZero() {
			created = s.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.SubmissionID, s.Status, verdict, created, s.Filename)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
