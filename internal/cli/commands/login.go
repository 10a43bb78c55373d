package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/starter/internal/cli/app"
	"github.com/branchd-dev/starter/internal/cli/router"
)

// NewLoginCmd creates the login command
func NewLoginCmd(opts *Options) *cobra.Command {
	var email, password, redirect string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts, email, password, redirect)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set STARTER_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set STARTER_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&redirect, "redirect", "", "Page to open after signing in")

	return cmd
}

func runLogin(cmd *cobra.Command, opts *Options, email, password, redirect string) error {
	// Check for environment variables (useful for CI/CD)
	email = envOr(email, "STARTER_EMAIL")
	password = envOr(password, "STARTER_PASSWORD")

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or STARTER_EMAIL env var)")
	}

	a, err := startApp(cmd.Context(), cmd, opts)
	if err != nil {
		return err
	}

	return submitLogin(cmd, a, email, password, url.Values{router.RedirectParam: []string{redirect}})
}

// submitLogin prompts for a missing password and signs in, continuing to the
// page recorded in search
func submitLogin(cmd *cobra.Command, a *app.App, email, password string, search url.Values) error {
	out := cmd.OutOrStdout()

	if password == "" {
		var err error
		password, err = readPassword(out, "STARTER_PASSWORD")
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Logging in to %s...\n", a.Client().BaseURL())

	_, err := a.SubmitLogin(cmd.Context(), app.LoginForm{Email: email, Password: password}, search)
	state := a.Session().State()
	if !state.IsAuthenticated || state.User == nil {
		if err == nil {
			err = fmt.Errorf("no session was established")
		}
		return fmt.Errorf("login failed: %w", describeFormError(err))
	}

	fmt.Fprintln(out, "✓ Login successful!")
	fmt.Fprintf(out, "  User: %s (%s)\n", state.User.Name, state.User.Email)

	// Signed in, but the page to continue to could not be shown
	if err != nil {
		return fmt.Errorf("could not open %s: %w", router.RedirectTarget(search), describeError(err))
	}
	return nil
}
