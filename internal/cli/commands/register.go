package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/homebuddy-dev/homebuddy/internal/cli/handlers"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var form handlers.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a HomeBuddy user account",
		Example: `  $ homebuddy register --name "Jane Doe" --email jane@example.com --phone 555-0100 --address "1 Main St"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd.Context(), form, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address (or set HOMEBUDDY_EMAIL)")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&form.Address, "address", "", "Address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (or set HOMEBUDDY_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "Password confirmation (will prompt if not provided)")

	return cmd
}

func runRegister(ctx context.Context, form handlers.RegisterForm, opts ...Option) error {
	o := newOptions(opts)

	form.Email = firstNonEmpty(form.Email, "HOMEBUDDY_EMAIL")

	rt, err := newRuntime(o)
	if err != nil {
		return err
	}
	defer rt.Close()

	const hint = "use --password and --confirm-password flags"
	if form.Password == "" {
		if env := os.Getenv("HOMEBUDDY_PASSWORD"); env != "" {
			form.Password = env
			if form.ConfirmPassword == "" {
				form.ConfirmPassword = env
			}
		} else if form.Password, err = readPassword(o.out, "Password: ", hint); err != nil {
			return err
		}
	}
	if form.ConfirmPassword == "" {
		if form.ConfirmPassword, err = readPassword(o.out, "Confirm password: ", hint); err != nil {
			return err
		}
	}

	outcome := rt.handlers().Register(ctx, form)
	if !outcome.Success {
		return outcome.Err
	}
	return nil
}
