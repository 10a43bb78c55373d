package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/starter/internal/cli/client"
	"github.com/branchd-dev/starter/internal/cli/router"
)

// NewUsersCmd creates the users command group
func NewUsersCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := startApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			loc, err := a.Open(cmd.Context(), "/users")
			if err != nil {
				return describeError(err)
			}
			if loc.Path == router.LoginPath {
				return fmt.Errorf("listing users requires authentication. Please run 'starter login' first")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := startApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			user, err := a.Client().GetUser(cmd.Context(), args[0])
			if err != nil {
				return describeError(err)
			}
			printUser(cmd, user)
			return nil
		},
	})

	var name, email string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a user's name or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.UpdateUserRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("email") {
				req.Email = &email
			}
			if req.Name == nil && req.Email == nil {
				return fmt.Errorf("nothing to update (use --name or --email)")
			}

			a, err := startApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			user, err := a.Client().UpdateUser(cmd.Context(), args[0], req)
			if err != nil {
				return describeError(err)
			}
			printUser(cmd, user)
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "New display name")
	update.Flags().StringVar(&email, "email", "", "New email address")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := startApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			if err := a.Client().DeleteUser(cmd.Context(), args[0]); err != nil {
				return describeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted user %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func printUser(cmd *cobra.Command, user *client.User) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", user.Name)
	fmt.Fprintf(out, "  ID:    %s\n", user.ID)
	fmt.Fprintf(out, "  Email: %s\n", user.Email)
}
