package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/homebuddy-dev/homebuddy/internal/cli/config"
	"github.com/homebuddy-dev/homebuddy/internal/cli/siteselect"
	"github.com/homebuddy-dev/homebuddy/internal/cli/storage"
	"github.com/homebuddy-dev/homebuddy/internal/cli/userconfig"
)

// NewSelectSiteCmd creates the select-site command
func NewSelectSiteCmd() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "select-site [url-or-alias]",
		Short: "Select the site to use for commands",
		Long: `Select the site to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ homebuddy select-site                                   # Interactive selection
  $ homebuddy select-site http://localhost:5500/index.html  # Select by page URL
  $ homebuddy select-site production                        # Select by alias
  $ homebuddy select-site --storage sqlite                  # Only change the storage backend
  $ homebuddy select-site --storage ""                      # Back to HOMEBUDDY_STORAGE`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			var storageOverride *string
			if cmd.Flags().Changed("storage") {
				storageOverride = &backend
			}
			return runSelectSite(urlOrAlias, storageOverride, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&backend, "storage", "", "Storage backend to remember (file, sqlite, memory; empty clears)")

	return cmd
}

// runSelectSite saves the selected site. A non-nil backend is saved as the
// storage override first; with no site argument that is all it does.
func runSelectSite(urlOrAlias string, backend *string, opts ...Option) error {
	o := newOptions(opts)

	if backend != nil {
		if err := saveStorageBackend(o, *backend); err != nil {
			return err
		}
		if urlOrAlias == "" {
			return nil
		}
	}

	cfg := o.loadProjectConfig()
	if cfg == nil {
		return fmt.Errorf("failed to load config: %s not found\nRun 'homebuddy init <page-url>' to create a configuration file", config.ConfigFileName)
	}

	var (
		site *config.Site
		err  error
	)
	if urlOrAlias != "" {
		site, err = siteselect.GetSiteByURLOrAlias(cfg, urlOrAlias)
	} else {
		site, err = siteselect.PromptSiteSelection(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SetSelectedSite(site.URL); err != nil {
		return fmt.Errorf("failed to save selected site: %w", err)
	}

	fmt.Fprintf(o.out, "Selected site: %s (%s)\n", site.Alias, site.URL)
	return nil
}

func saveStorageBackend(o *options, backend string) error {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend != "" && !storage.IsBackend(backend) {
		return fmt.Errorf("%w: %q (use %s, %s or %s)", storage.ErrUnknownBackend, backend,
			storage.BackendFile, storage.BackendSQLite, storage.BackendMemory)
	}

	if err := userconfig.SetStorage(backend); err != nil {
		return fmt.Errorf("failed to save storage backend: %w", err)
	}

	if backend == "" {
		fmt.Fprintln(o.out, "Storage backend: from environment")
	} else {
		fmt.Fprintf(o.out, "Storage backend: %s\n", backend)
	}
	return nil
}
