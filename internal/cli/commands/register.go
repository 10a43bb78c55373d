package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/starter/internal/cli/app"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd(opts *Options) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in with it",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = envOr(email, "STARTER_EMAIL")
			password = envOr(password, "STARTER_PASSWORD")

			a, err := startApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if password == "" {
				password, err = readPassword(out, "STARTER_PASSWORD")
				if err != nil {
					return err
				}
			}

			form := app.RegisterForm{Name: name, Email: email, Password: password}
			if _, err := a.SubmitRegister(cmd.Context(), form, nil); err != nil {
				return fmt.Errorf("registration failed: %w", describeFormError(err))
			}

			fmt.Fprintln(out, "✓ Account created!")
			fmt.Fprintf(out, "  User: %s (%s)\n", name, email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address (or set STARTER_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set STARTER_PASSWORD, will prompt if not provided)")

	return cmd
}
