package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/branchd-dev/starter/internal/cli/app"
	"github.com/branchd-dev/starter/internal/cli/auth"
	"github.com/branchd-dev/starter/internal/cli/client"
	"github.com/branchd-dev/starter/internal/cli/config"
	"github.com/branchd-dev/starter/internal/cli/userconfig"
	"github.com/branchd-dev/starter/internal/logger"
)

// Options are the persistent flags shared by every command
type Options struct {
	APIURL     string
	TokenStore string

	// Store, when set, replaces the configured token store (tests)
	Store auth.TokenStore
}

// startApp resolves settings, builds the application and runs the initial
// session rehydration
func startApp(ctx context.Context, cmd *cobra.Command, opts *Options) (*app.App, error) {
	settings, err := config.Load(opts.APIURL, opts.TokenStore)
	if err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		dir, err := userconfig.GetConfigDir()
		if err != nil {
			return nil, err
		}
		store, err = auth.Open(settings.TokenStore, dir)
		if err != nil {
			return nil, err
		}
	}

	a := app.New(app.Config{
		BaseURL: settings.APIURL,
		Store:   store,
		Out:     cmd.OutOrStdout(),
		Logger:  logger.New(cmd.ErrOrStderr(), settings.LogLevel, "console"),
	})

	if err := a.Start(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// describeFormError explains why a submitted form was not accepted
func describeFormError(err error) error {
	var fields app.FieldErrors
	switch {
	case errors.As(err, &fields):
		return fmt.Errorf("invalid input: %s", fields.Error())
	case errors.Is(err, client.ErrNetwork):
		return fmt.Errorf("could not reach the API: %w", err)
	default:
		return err
	}
}

// describeError turns API errors into a line a person can act on
func describeError(err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return fmt.Errorf("not authenticated (%w). Please run 'starter login' first", err)
	case errors.Is(err, client.ErrNetwork):
		return fmt.Errorf("could not reach the API: %w", err)
	default:
		return err
	}
}

// readPassword prompts on the terminal, refusing when stdin is not one
func readPassword(out io.Writer, envVar string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or %s env var)", envVar)
	}

	fmt.Fprint(out, "Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(out) // New line after password input
	return string(bytePassword), nil
}

func envOr(value, envVar string) string {
	if value != "" {
		return value
	}
	return os.Getenv(envVar)
}
