package siteselect

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homebuddy-dev/homebuddy/internal/cli/config"
	"github.com/homebuddy-dev/homebuddy/internal/cli/userconfig"
)

func twoSites() *config.Config {
	return &config.Config{Sites: []config.Site{
		{Alias: "prod", URL: "https://homebuddy.vercel.app/"},
		{Alias: "local", URL: "http://localhost:5500/"},
	}}
}

func stubPrompt(t *testing.T, fn func(*config.Config) (*config.Site, error)) {
	t.Helper()
	orig := prompt
	prompt = fn
	t.Cleanup(func() { prompt = orig })
}

func TestResolveSite_AliasWins(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	site, err := ResolveSite(twoSites(), "local", "https://ignored.example/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5500/", site.URL)

	_, err = ResolveSite(twoSites(), "staging", "")
	assert.Error(t, err)
}

func TestResolveSite_PageURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	site, err := ResolveSite(nil, "", "http://127.0.0.1:5500/x.html")
	require.NoError(t, err)
	assert.Equal(t, "page", site.Alias)

	site, err = ResolveSite(twoSites(), "", "http://localhost:5500/")
	require.NoError(t, err)
	assert.Equal(t, "local", site.Alias)
}

func TestResolveSite_NothingToGoOn(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := ResolveSite(nil, "", "")
	assert.Error(t, err)
}

func TestResolveSite_SelectedSite(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, userconfig.SetSelectedSite("http://localhost:5500/"))
	stubPrompt(t, func(*config.Config) (*config.Site, error) {
		t.Fatal("prompt must not run when a site is selected")
		return nil, nil
	})

	site, err := ResolveSite(twoSites(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "local", site.Alias)
}

func TestResolveSite_StaleSelectionFallsThrough(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, userconfig.SetSelectedSite("http://gone.example/"))
	stubPrompt(t, func(cfg *config.Config) (*config.Site, error) {
		return &cfg.Sites[0], nil
	})

	site, err := ResolveSite(twoSites(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "prod", site.Alias)

	selected, err := userconfig.GetSelectedSite()
	require.NoError(t, err)
	assert.Equal(t, "https://homebuddy.vercel.app/", selected)
}

func TestResolveSite_SingleSiteIsSelected(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &config.Config{Sites: []config.Site{{Alias: "only", URL: "http://localhost:5500/"}}}
	site, err := ResolveSite(cfg, "", "")
	require.NoError(t, err)
	assert.Equal(t, "only", site.Alias)

	selected, _ := userconfig.GetSelectedSite()
	assert.Equal(t, "http://localhost:5500/", selected)
}

func TestResolveSite_PromptCancelled(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	stubPrompt(t, func(*config.Config) (*config.Site, error) {
		return nil, errors.New("site selection cancelled: ^C")
	})

	_, err := ResolveSite(twoSites(), "", "")
	assert.Error(t, err)
}

func TestGetSiteByURLOrAlias(t *testing.T) {
	cfg := twoSites()

	site, err := GetSiteByURLOrAlias(cfg, "prod")
	require.NoError(t, err)
	assert.Equal(t, "https://homebuddy.vercel.app/", site.URL)

	site, err = GetSiteByURLOrAlias(cfg, "http://localhost:5500/")
	require.NoError(t, err)
	assert.Equal(t, "local", site.Alias)

	_, err = GetSiteByURLOrAlias(cfg, "nope")
	assert.Error(t, err)
}

func TestResolveSite_SaveFailureIsLoggedNotPrinted(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var buf bytes.Buffer
	origLogger := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = origLogger })

	origSave := saveSelected
	saveSelected = func(string) error { return errors.New("read-only home") }
	t.Cleanup(func() { saveSelected = origSave })

	cfg := &config.Config{Sites: []config.Site{{Alias: "only", URL: "http://localhost:5500/"}}}
	site, err := ResolveSite(cfg, "", "")
	require.NoError(t, err)
	assert.Equal(t, "only", site.Alias)

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "read-only home")
	assert.Contains(t, buf.String(), "Failed to save selected site")
}
