package cli

import (
	"fmt"
	"os"

	"github.com/branchd-dev/starter/internal/cli/commands"
	"github.com/spf13/cobra"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree. opts receives the persistent flags.
func NewRootCmd(opts *commands.Options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "starter",
		Short: "Starter - session-aware API client",
		Long: `Starter CLI - sign in, browse pages and call the API with your session.

The session token is kept in the OS keychain (or a local file with
--token-store file) and attached to every request. Guarded pages send
you through the login form first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "API base URL (or set STARTER_API_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.TokenStore, "token-store", "", "Token store: keyring, file or memory (or set STARTER_TOKEN_STORE)")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "starter version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd(opts))
	rootCmd.AddCommand(commands.NewRegisterCmd(opts))
	rootCmd.AddCommand(commands.NewLogoutCmd(opts))
	rootCmd.AddCommand(commands.NewWhoamiCmd(opts))
	rootCmd.AddCommand(commands.NewRefreshCmd(opts))
	rootCmd.AddCommand(commands.NewOpenCmd(opts))
	rootCmd.AddCommand(commands.NewUsersCmd(opts))
	rootCmd.AddCommand(commands.NewConfigCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCmd(&commands.Options{})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
