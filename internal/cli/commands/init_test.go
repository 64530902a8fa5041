package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homebuddy-dev/homebuddy/internal/cli/browser"
	"github.com/homebuddy-dev/homebuddy/internal/cli/config"
	"github.com/homebuddy-dev/homebuddy/internal/cli/environment"
	"github.com/homebuddy-dev/homebuddy/internal/cli/session"
	"github.com/homebuddy-dev/homebuddy/internal/cli/storage"
	"github.com/homebuddy-dev/homebuddy/internal/cli/userconfig"
)

// initInTempDir runs init from a fresh working directory
func initInTempDir(t *testing.T) (string, *bytes.Buffer, *browser.Recorder) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	return dir, &bytes.Buffer{}, &browser.Recorder{}
}

func TestInitCommand_NewConfig(t *testing.T) {
	dir, out, rec := initInTempDir(t)

	err := runInit(testPage, "", false, WithOutput(out), WithNavigator(rec), WithFlags(GlobalFlags{}))
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "local", cfg.Sites[0].Alias)
	assert.Equal(t, testPage, cfg.Sites[0].URL)

	assert.Contains(t, out.String(), "Created ./homebuddy.json")
	assert.Contains(t, out.String(), "API base URL: http://127.0.0.1:8001")
	assert.Equal(t, []string{testPage}, rec.Redirects)
}

func TestInitCommand_AliasDerivation(t *testing.T) {
	dir, out, rec := initInTempDir(t)
	opts := []Option{WithOutput(out), WithNavigator(rec), WithFlags(GlobalFlags{})}

	require.NoError(t, runInit(testPage, "", false, opts...))
	require.NoError(t, runInit("https://homebuddy.vercel.app/index.html", "", false, opts...))
	require.NoError(t, runInit("https://homebuddy-staging.vercel.app/index.html", "", false, opts...))
	require.NoError(t, runInit("http://localhost:3000/index.html", "", false, opts...))

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)

	aliases := make([]string, len(cfg.Sites))
	for i, s := range cfg.Sites {
		aliases[i] = s.Alias
	}
	assert.Equal(t, []string{"local", "production", "site-3", "site-4"}, aliases)
	assert.Contains(t, out.String(), "API base URL: https://homebuddy.vercel.app")
}

func TestInitCommand_ExistingSite(t *testing.T) {
	dir, out, rec := initInTempDir(t)
	opts := []Option{WithOutput(out), WithNavigator(rec), WithFlags(GlobalFlags{})}

	require.NoError(t, runInit(testPage, "dev", false, opts...))
	require.NoError(t, runInit(testPage, "", false, opts...))

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	assert.Len(t, cfg.Sites, 1)
	assert.Contains(t, out.String(), "already exists in homebuddy.json as dev")
}

func TestInitCommand_DuplicateAlias(t *testing.T) {
	_, out, rec := initInTempDir(t)
	opts := []Option{WithOutput(out), WithNavigator(rec), WithFlags(GlobalFlags{})}

	require.NoError(t, runInit(testPage, "dev", false, opts...))
	err := runInit("https://homebuddy.vercel.app/", "dev", false, opts...)
	assert.Error(t, err)
}

func TestInitCommand_YAML(t *testing.T) {
	dir, out, rec := initInTempDir(t)

	err := runInit("https://homebuddy.vercel.app/", "", true, WithOutput(out), WithNavigator(rec), WithFlags(GlobalFlags{}))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, config.ConfigFileName))
	assert.True(t, os.IsNotExist(err))

	cfg, err := config.Load(filepath.Join(dir, config.YAMLConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Sites[0].Alias)
}

func TestInitCommand_InvalidURL(t *testing.T) {
	_, out, rec := initInTempDir(t)
	err := runInit("not a url", "", false, WithOutput(out), WithNavigator(rec), WithFlags(GlobalFlags{}))
	assert.Error(t, err)
	assert.Empty(t, rec.Redirects)
}

func TestInitCommand_NoBrowserPrints(t *testing.T) {
	_, out, _ := initInTempDir(t)

	err := runInit(testPage, "", false, WithOutput(out), WithFlags(GlobalFlags{NoBrowser: true}))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Next page: "+testPage)
}

func TestSelectSiteCommand(t *testing.T) {
	_, out, _ := initInTempDir(t)
	cfg := &config.Config{Sites: []config.Site{
		{Alias: "local", URL: testPage},
		{Alias: "production", URL: "https://homebuddy.vercel.app/"},
	}}

	require.NoError(t, runSelectSite("production", nil, WithOutput(out), WithProjectConfig(cfg)))
	selected, err := userconfig.GetSelectedSite()
	require.NoError(t, err)
	assert.Equal(t, "https://homebuddy.vercel.app/", selected)
	assert.Contains(t, out.String(), "Selected site: production")

	require.NoError(t, runSelectSite(testPage, nil, WithOutput(out), WithProjectConfig(cfg)))
	selected, _ = userconfig.GetSelectedSite()
	assert.Equal(t, testPage, selected)

	assert.Error(t, runSelectSite("staging", nil, WithOutput(out), WithProjectConfig(cfg)))
}

func TestSelectSiteCommand_NoConfig(t *testing.T) {
	_, out, _ := initInTempDir(t)
	err := runSelectSite("local", nil, WithOutput(out))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "homebuddy init")
}

func TestRuntime_UsesSelectedSiteAndFileStorage(t *testing.T) {
	dir, out, _ := initInTempDir(t)
	t.Setenv("HOMEBUDDY_STORAGE", "file")
	t.Setenv("HOMEBUDDY_STORAGE_DIR", filepath.Join(dir, "storage"))
	t.Setenv("HOMEBUDDY_KEYRING", "false")

	cfg := &config.Config{Sites: []config.Site{
		{Alias: "local", URL: testPage},
		{Alias: "production", URL: "https://homebuddy.vercel.app/"},
	}}
	require.NoError(t, userconfig.SetSelectedSite("https://homebuddy.vercel.app/"))

	rt, err := newRuntime(newOptions([]Option{WithOutput(out), WithProjectConfig(cfg), WithFlags(GlobalFlags{NoBrowser: true})}))
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, "production", rt.site.Alias)
	assert.Equal(t, "https://homebuddy.vercel.app", rt.session.BaseURL)
	assert.Equal(t, "file", rt.backend)

	require.NoError(t, rt.session.SetToken("abc"))
	_, err = os.Stat(filepath.Join(dir, "storage", "homebuddy-vercel-app.json"))
	assert.NoError(t, err)
}

func TestSelectSiteCommand_StorageOverride(t *testing.T) {
	dir, out, _ := initInTempDir(t)
	t.Setenv("HOMEBUDDY_STORAGE", "file")
	t.Setenv("HOMEBUDDY_STORAGE_DIR", filepath.Join(dir, "storage"))
	t.Setenv("HOMEBUDDY_KEYRING", "false")

	backend := "SQLite"
	require.NoError(t, runSelectSite("", &backend, WithOutput(out)))
	assert.Contains(t, out.String(), "Storage backend: sqlite")

	uc, err := userconfig.Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", uc.Storage)

	rt, err := newRuntime(newOptions([]Option{WithOutput(out), WithFlags(GlobalFlags{PageURL: testPage, NoBrowser: true})}))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", rt.backend)
	rt.Close()

	cleared := ""
	require.NoError(t, runSelectSite("", &cleared, WithOutput(out)))
	uc, err = userconfig.Load()
	require.NoError(t, err)
	assert.Empty(t, uc.Storage)

	bogus := "redis"
	err = runSelectSite("", &bogus, WithOutput(out))
	assert.ErrorIs(t, err, storage.ErrUnknownBackend)
}

func TestRuntime_APIOrigin(t *testing.T) {
	loc, err := environment.ParseLocation("https://example.org/Frontend/html/user/login.html")
	require.NoError(t, err)

	rt := &runtime{session: &session.Session{Location: loc}}
	assert.Equal(t, "https://example.org", rt.apiOrigin())

	rt.session.BaseURL = "http://localhost:8001"
	assert.Equal(t, "http://localhost:8001", rt.apiOrigin())
}

func TestRuntime_Ephemeral(t *testing.T) {
	_, out, _ := initInTempDir(t)

	rt, err := newRuntime(newOptions([]Option{
		WithOutput(out),
		WithFlags(GlobalFlags{PageURL: testPage, Ephemeral: true}),
	}))
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, "memory", rt.backend)
	assert.Equal(t, "page", rt.site.Alias)
}
