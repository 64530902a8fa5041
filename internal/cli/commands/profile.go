package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/homebuddy-dev/homebuddy/internal/cli/client"
)

// NewProfileCmd creates the profile command
func NewProfileCmd() *cobra.Command {
	var (
		update client.ProfileUpdate
		output string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the logged-in user's profile",
		Example: `  $ homebuddy profile
  $ homebuddy profile --phone 555-0199 --address "2 Side St"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := map[string]bool{}
			for _, name := range []string{"name", "email", "phone", "address"} {
				changed[name] = cmd.Flags().Changed(name)
			}
			return runProfile(cmd.Context(), update, changed, output, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&update.Name, "name", "", "New name")
	cmd.Flags().StringVar(&update.Email, "email", "", "New email address")
	cmd.Flags().StringVar(&update.Phone, "phone", "", "New phone number")
	cmd.Flags().StringVar(&update.Address, "address", "", "New address")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")

	return cmd
}

func runProfile(ctx context.Context, update client.ProfileUpdate, changed map[string]bool, output string, opts ...Option) error {
	o := newOptions(opts)

	rt, err := newRuntime(o)
	if err != nil {
		return err
	}
	defer rt.Close()

	profile, err := rt.client.Profile(ctx)
	if err != nil {
		return profileError("load", err)
	}

	if changed["name"] || changed["email"] || changed["phone"] || changed["address"] {
		merged := client.ProfileUpdate{
			Name:    profile.Name,
			Email:   profile.Email,
			Phone:   profile.Phone,
			Address: profile.Address,
		}
		if changed["name"] {
			merged.Name = update.Name
		}
		if changed["email"] {
			merged.Email = update.Email
		}
		if changed["phone"] {
			merged.Phone = update.Phone
		}
		if changed["address"] {
			merged.Address = update.Address
		}

		profile, err = rt.client.UpdateProfile(ctx, merged)
		if err != nil {
			return profileError("update", err)
		}
		fmt.Fprintln(o.out, "✓ Profile updated")
	}

	return writeOutput(o.out, output, profile, func(out io.Writer) {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Name:\t%s\n", profile.Name)
		fmt.Fprintf(w, "Email:\t%s\n", profile.Email)
		fmt.Fprintf(w, "Phone:\t%s\n", profile.Phone)
		fmt.Fprintf(w, "Address:\t%s\n", profile.Address)
		fmt.Fprintf(w, "Role:\t%s\n", profile.Role)
		w.Flush()
	})
}

func profileError(action string, err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("failed to %s profile: %w", action, err)
	}
	if apiErr.StatusCode() == http.StatusUnauthorized {
		return fmt.Errorf("not authenticated. Please run 'homebuddy login' first")
	}
	return fmt.Errorf("failed to %s profile: %s", action, apiErr.Detail("Request failed"))
}
