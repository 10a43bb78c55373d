package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/starter/internal/cli/config"
	"github.com/branchd-dev/starter/internal/cli/userconfig"
)

// NewConfigCmd creates the config command group
func NewConfigCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change local settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-url <url>",
		Short: "Save the API URL used when no flag or env var is set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ValidateAPIURL(args[0]); err != nil {
				return err
			}
			if err := userconfig.SetAPIURL(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ API URL set to %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(opts.APIURL, opts.TokenStore)
			if err != nil {
				return err
			}
			store := settings.TokenStore
			if store == "" {
				store = "keyring"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API URL:     %s\n", settings.APIURL)
			fmt.Fprintf(out, "Token store: %s\n", store)
			fmt.Fprintf(out, "Log level:   %s\n", settings.LogLevel)
			return nil
		},
	})

	return cmd
}
