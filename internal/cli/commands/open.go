package commands

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/branchd-dev/starter/internal/cli/client"
	"github.com/branchd-dev/starter/internal/cli/router"
)

// NewOpenCmd creates the open command, which navigates to a page. Guarded
// pages send anonymous visitors through the login form first.
func NewOpenCmd(opts *Options) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "open [path]",
		Short: "Open a page (prompts for one when no path is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := startApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				path, err = PromptRoute(a.Router().Routes())
				if err != nil {
					return err
				}
			}

			loc, err := a.Open(cmd.Context(), path)
			if err != nil {
				if errors.Is(err, client.ErrUnauthorized) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Your session has expired.")
					return describeError(err)
				}
				return err
			}

			// Sent to the login page by a route guard
			if loc.Path != router.LoginPath || path == router.LoginPath {
				return nil
			}
			if !term.IsTerminal(int(syscall.Stdin)) && envOr("", "STARTER_PASSWORD") == "" {
				return fmt.Errorf("%s requires authentication. Please run 'starter login --redirect %s'", path, router.RedirectTarget(loc.Search))
			}

			email = envOr(email, "STARTER_EMAIL")
			if email == "" {
				prompt := promptui.Prompt{Label: "Email"}
				if email, err = prompt.Run(); err != nil {
					return fmt.Errorf("login cancelled: %w", err)
				}
			}
			return submitLogin(cmd, a, email, envOr("", "STARTER_PASSWORD"), loc.Search)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email to sign in with if the page requires it (or set STARTER_EMAIL)")

	return cmd
}

// PromptRoute shows an interactive prompt for the user to pick a page
func PromptRoute(routes []*router.Route) (string, error) {
	if len(routes) == 0 {
		return "", fmt.Errorf("no pages available")
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Path | cyan }} {{ .Title | faint }}",
		Inactive: "  {{ .Path }} {{ .Title | faint }}",
		Selected: "{{ .Path | green }}",
	}

	prompt := promptui.Select{
		Label:     "Open a page",
		Items:     routes,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("page selection cancelled: %w", err)
	}

	return routes[index].Path, nil
}
