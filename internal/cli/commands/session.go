package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := startApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}

			if _, err := a.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := startApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}

			state := a.Session().State()
			if !state.IsAuthenticated || state.User == nil {
				return fmt.Errorf("not authenticated. Please run 'starter login' first")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", state.User.Name, state.User.Email)
			fmt.Fprintf(out, "  ID: %s\n", state.User.ID)
			return nil
		},
	}
}

// NewRefreshCmd creates the refresh command
func NewRefreshCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored token for a fresh one",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := startApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}

			if !a.Session().State().IsAuthenticated {
				return fmt.Errorf("not authenticated. Please run 'starter login' first")
			}

			if _, err := a.Auth().RefreshToken(cmd.Context()); err != nil {
				return fmt.Errorf("refresh failed: %w", describeError(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Token refreshed")
			return nil
		},
	}
}
