package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/homebuddy-dev/homebuddy/internal/cli/browser"
	"github.com/homebuddy-dev/homebuddy/internal/cli/config"
	"github.com/homebuddy-dev/homebuddy/internal/cli/environment"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var (
		alias   string
		useYAML bool
	)

	cmd := &cobra.Command{
		Use:   "init <page-url>",
		Short: "Add a HomeBuddy site to homebuddy.json",
		Example: `  $ homebuddy init http://localhost:5500/Frontend/html/user/login.html
  $ homebuddy init https://homebuddy.vercel.app/Frontend/html/user/login.html --alias production`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args[0], alias, useYAML, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "", "Site alias (derived from the URL if not specified)")
	cmd.Flags().BoolVar(&useYAML, "yaml", false, "Write homebuddy.yaml instead of homebuddy.json")

	return cmd
}

func runInit(pageURL, alias string, useYAML bool, opts ...Option) error {
	o := newOptions(opts)

	loc, err := environment.ParseLocation(pageURL)
	if err != nil {
		return err
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)
	if useYAML {
		configPath = filepath.Join(currentDir, config.YAMLConfigFileName)
	}
	for _, name := range []string{config.ConfigFileName, config.YAMLConfigFileName} {
		if p := filepath.Join(currentDir, name); fileExists(p) {
			configPath = p
			break
		}
	}
	fileName := filepath.Base(configPath)

	var cfg *config.Config
	isNewConfig := false

	// Check if config already exists
	if fileExists(configPath) {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Fprintf(o.out, "Found existing %s\n", fileName)
	} else {
		cfg = &config.Config{Sites: []config.Site{}}
		isNewConfig = true
	}

	if existing, err := cfg.GetSiteByURL(pageURL); err == nil {
		fmt.Fprintf(o.out, "Site %s already exists in %s as %s\n", pageURL, fileName, existing.Alias)
	} else {
		if alias == "" {
			alias = deriveAlias(cfg, loc)
		}
		if _, err := cfg.GetSiteByAlias(alias); err == nil {
			return fmt.Errorf("alias '%s' is already used in %s", alias, fileName)
		}

		cfg.Sites = append(cfg.Sites, config.Site{Alias: alias, URL: pageURL})

		if err := config.Save(configPath, cfg); err != nil {
			return err
		}

		if isNewConfig {
			fmt.Fprintf(o.out, "✓ Created ./%s with site %s (%s)\n", fileName, pageURL, alias)
		} else {
			fmt.Fprintf(o.out, "✓ Added site %s (%s) to ./%s\n", pageURL, alias, fileName)
		}
	}

	if base := cfg.Resolver().Resolve(loc); base != "" {
		fmt.Fprintf(o.out, "  API base URL: %s\n", base)
	} else {
		fmt.Fprintf(o.out, "  API base URL: relative to %s\n", loc.Origin())
	}

	nav := o.navigator
	if nav == nil {
		if o.flags.NoBrowser {
			nav = browser.PrintNavigator{PageURL: pageURL, Out: o.out}
		} else {
			nav = browser.NewSystemNavigator(pageURL, o.out)
		}
	}
	if err := nav.Navigate(pageURL); err != nil {
		fmt.Fprintf(o.out, "⚠ Could not open browser automatically: %v\n", err)
	}

	fmt.Fprintln(o.out, "\nNext steps:")
	fmt.Fprintln(o.out, "  1. Run 'homebuddy register' to create an account")
	fmt.Fprintln(o.out, "  2. Run 'homebuddy login' to authenticate")

	return nil
}

// deriveAlias names local pages "local", the first remote site "production"
// and later ones "site-N"
func deriveAlias(cfg *config.Config, loc environment.Location) string {
	if environment.IsLocal(loc.Hostname) {
		if _, err := cfg.GetSiteByAlias("local"); err != nil {
			return "local"
		}
	} else if _, err := cfg.GetSiteByAlias("production"); err != nil {
		return "production"
	}
	return fmt.Sprintf("site-%d", len(cfg.Sites)+1)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
