package siteselect

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"

	"github.com/homebuddy-dev/homebuddy/internal/cli/config"
	"github.com/homebuddy-dev/homebuddy/internal/cli/userconfig"
)

// replaced in tests
var (
	prompt       = PromptSiteSelection
	saveSelected = userconfig.SetSelectedSite
)

// ResolveSite determines which site to use based on the following priority:
// 1. If siteAlias is provided, use that site from the project config
// 2. If pageURL is provided, use it as an ad hoc site
// 3. If user has a selected site in their local config, use that
// 4. If only one site in project config, use that
// 5. Otherwise, prompt user to select a site interactively
func ResolveSite(projectConfig *config.Config, siteAlias, pageURL string) (*config.Site, error) {
	if siteAlias != "" {
		if projectConfig == nil {
			return nil, fmt.Errorf("--site requires a %s file", config.ConfigFileName)
		}
		return projectConfig.GetSiteByAlias(siteAlias)
	}

	if pageURL != "" {
		if projectConfig != nil {
			if site, err := projectConfig.GetSiteByURL(pageURL); err == nil {
				return site, nil
			}
		}
		return &config.Site{Alias: "page", URL: pageURL}, nil
	}

	if projectConfig == nil {
		return nil, fmt.Errorf("no site given: pass --page-url or run 'homebuddy init <page-url>'")
	}

	selectedURL, err := userconfig.GetSelectedSite()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if selectedURL != "" {
		site, err := projectConfig.GetSiteByURL(selectedURL)
		if err != nil {
			// Selected site no longer exists in project config, clear it and continue
			_ = saveSelected("")
		} else {
			return site, nil
		}
	}

	if len(projectConfig.Sites) == 1 {
		site := &projectConfig.Sites[0]
		if err := saveSelected(site.URL); err != nil {
			// Don't fail if we can't save, just continue
			log.Warn().Err(err).Str("site", site.Alias).Msg("Failed to save selected site")
		}
		return site, nil
	}

	site, err := prompt(projectConfig)
	if err != nil {
		return nil, err
	}

	if err := saveSelected(site.URL); err != nil {
		log.Warn().Err(err).Str("site", site.Alias).Msg("Failed to save selected site")
	}

	return site, nil
}

// PromptSiteSelection shows an interactive prompt for the user to select a site
func PromptSiteSelection(projectConfig *config.Config) (*config.Site, error) {
	if len(projectConfig.Sites) == 0 {
		return nil, fmt.Errorf("no sites configured in %s", config.ConfigFileName)
	}

	type siteOption struct {
		Label string
		Site  *config.Site
	}

	options := make([]siteOption, len(projectConfig.Sites))
	for i := range projectConfig.Sites {
		site := &projectConfig.Sites[i]
		options[i] = siteOption{
			Label: fmt.Sprintf("%s (%s)", site.Alias, site.URL),
			Site:  site,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	sel := promptui.Select{
		Label:     "Select a site",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := sel.Run()
	if err != nil {
		return nil, fmt.Errorf("site selection cancelled: %w", err)
	}

	return options[index].Site, nil
}

// GetSiteByURLOrAlias finds a site by page URL or alias
func GetSiteByURLOrAlias(cfg *config.Config, urlOrAlias string) (*config.Site, error) {
	if site, err := cfg.GetSiteByURL(urlOrAlias); err == nil {
		return site, nil
	}
	if site, err := cfg.GetSiteByAlias(urlOrAlias); err == nil {
		return site, nil
	}
	return nil, fmt.Errorf("site with URL or alias '%s' not found", urlOrAlias)
}
