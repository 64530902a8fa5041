package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/homebuddy-dev/homebuddy/internal/cli/handlers"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a HomeBuddy site as a user, provider or admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), email, password, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set HOMEBUDDY_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set HOMEBUDDY_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, email, password string, opts ...Option) error {
	o := newOptions(opts)

	// Check for environment variables (useful for CI/CD)
	email = firstNonEmpty(email, "HOMEBUDDY_EMAIL")
	password = firstNonEmpty(password, "HOMEBUDDY_PASSWORD")

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or HOMEBUDDY_EMAIL env var)")
	}

	rt, err := newRuntime(o)
	if err != nil {
		return err
	}
	defer rt.Close()

	if password == "" {
		password, err = readPassword(o.out, "Password: ", "use --password flag or HOMEBUDDY_PASSWORD env var")
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(o.out, "Logging in to %s (%s)...\n", rt.site.Alias, rt.apiOrigin())

	outcome := rt.handlers().Login(ctx, handlers.LoginForm{Email: email, Password: password})
	if !outcome.Success {
		return outcome.Err
	}
	return nil
}
