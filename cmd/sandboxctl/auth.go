package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/etay-atar/Sandbox/internal/domain"
	"github.com/etay-atar/Sandbox/internal/session"
	"github.com/spf13/cobra"
)

func newLoginCmd(opts *globalOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if password == "" {
				password = os.Getenv("SANDBOX_PASSWORD")
			}
			if password == "" {
				if password, err = promptPassword(cmd); err != nil {
					return err
				}
			}
			if strings.TrimSpace(username) == "" || password == "" {
				return errors.New("username and password are required")
			}

			if err := session.FromContext(cmd.Context()).SignIn(cmd.Context(), a.client, username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", domain.PlaceholderUsername, "account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (default $SANDBOX_PASSWORD, else prompt)")
	return cmd
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := session.FromContext(cmd.Context()).Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		Args:  cobra.NoArgs,
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
			id := mgr.Identity()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", id.Username, id.Role)
			return nil
		},
	}
}
