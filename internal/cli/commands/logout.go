package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token for the current site",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(all, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clear every stored session key, not just the token")

	return cmd
}

func runLogout(all bool, opts ...Option) error {
	o := newOptions(opts)

	rt, err := newRuntime(o)
	if err != nil {
		return err
	}
	defer rt.Close()

	if all {
		err = rt.session.Storage.Clear()
	} else {
		err = rt.session.RemoveToken()
	}
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	fmt.Fprintf(o.out, "✓ Logged out of %s\n", rt.site.Alias)
	return nil
}
