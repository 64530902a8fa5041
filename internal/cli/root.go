package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/homebuddy-dev/homebuddy/internal/cli/commands"
	"github.com/homebuddy-dev/homebuddy/internal/logger"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "homebuddy",
	Short: "HomeBuddy - log in, register and call the HomeBuddy API",
	Long: `HomeBuddy CLI - the HomeBuddy web client from your terminal.

Each command works against a site, identified by a page URL. The page URL
decides which API the client talks to and which session it uses, the same way
it does in the browser.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Diagnostics go to stderr so command output stays pipeable
		logger.Init(commands.Globals().LogLevel, "console", os.Stderr)
	},
}

func init() {
	flags := commands.Globals()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.PageURL, "page-url", "", "Page URL to act as (overrides the selected site)")
	pf.StringVar(&flags.Site, "site", "", "Site alias from homebuddy.json")
	pf.BoolVar(&flags.NoBrowser, "no-browser", false, "Print redirect targets instead of opening them")
	pf.BoolVar(&flags.Ephemeral, "ephemeral", false, "Keep session state in memory only")
	pf.StringVar(&flags.LogLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error, off")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "homebuddy version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectSiteCmd())
	rootCmd.AddCommand(commands.NewEnvCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewProfileCmd())
	rootCmd.AddCommand(commands.NewRequestCmd())
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
