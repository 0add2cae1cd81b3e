package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/go-units"
	"github.com/etay-atar/Sandbox/internal/dashboard"
	"github.com/etay-atar/Sandbox/internal/domain"
	"github.com/spf13/cobra"
)

func newUploadCmd(opts *globalOptions) *cobra.Command {
	var wait bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Submit a file for analysis",
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

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			st, err := f.Stat()
			if err != nil {
				return err
			}
			if st.IsDir() {
				return fmt.Errorf("%s is a directory", args[0])
			}

			c := a.coordinator(mgr)
			defer c.Close()
			c.Mount()
			defer c.Unmount()

			name := filepath.Base(args[0])
			id, err := c.Upload(ctx, name, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s) as %s\n", name, units.HumanSize(float64(st.Size())), id)

			if !wait {
				return nil
			}
			return waitForReport(ctx, cmd.OutOrStdout(), c, id)
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "follow the analysis until the report is available")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 waits forever)")
	return cmd
}

// waitForReport prints progress changes of id until its report arrives.
func waitForReport(ctx context.Context, w io.Writer, c *dashboard.Coordinator, id string) error {
	updates := make(chan dashboard.State, 1)
	stop := make(chan struct{})
	defer close(stop)

	unsubscribe := c.Subscribe(func(s dashboard.State) {
		select {
		case updates <- s:
		case <-stop:
		}
	})
	defer unsubscribe()

	last := ""
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-updates:
			if s.SelectedID != id || s.Detail == nil {
				continue
			}
			if s.Detail.Kind == domain.DetailReport {
				return writeJSON(w, s.Detail.Report)
			}
			if p := s.Detail.Progress; p != nil {
				line := fmt.Sprintf("%s %d%%", p.Status, p.Progress)
				if line != last {
					fmt.Fprintln(w, line)
					last = line
				}
			}
		}
	}
}
