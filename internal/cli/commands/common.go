package commands

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/homebuddy-dev/homebuddy/internal/cli/browser"
	"github.com/homebuddy-dev/homebuddy/internal/cli/client"
	"github.com/homebuddy-dev/homebuddy/internal/cli/config"
	"github.com/homebuddy-dev/homebuddy/internal/cli/environment"
	"github.com/homebuddy-dev/homebuddy/internal/cli/handlers"
	"github.com/homebuddy-dev/homebuddy/internal/cli/session"
	"github.com/homebuddy-dev/homebuddy/internal/cli/siteselect"
	"github.com/homebuddy-dev/homebuddy/internal/cli/storage"
	"github.com/homebuddy-dev/homebuddy/internal/cli/userconfig"
	appconfig "github.com/homebuddy-dev/homebuddy/internal/config"
	"github.com/homebuddy-dev/homebuddy/internal/logger"
)

// GlobalFlags holds the persistent flags shared by every command
type GlobalFlags struct {
	PageURL   string
	Site      string
	NoBrowser bool
	Ephemeral bool
	LogLevel  string
}

var globals GlobalFlags

// Globals returns the flag values bound by the root command
func Globals() *GlobalFlags {
	return &globals
}

// options carries the dependencies a command needs. Tests override them.
type options struct {
	out        io.Writer
	flags      *GlobalFlags
	site       *config.Site
	project    *config.Config
	env        *appconfig.Config
	store      storage.Storage
	httpClient *http.Client
	navigator  browser.Navigator
	logger     *zerolog.Logger
}

// Option configures a command run
type Option func(*options)

// WithOutput sets where command output is written
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithFlags replaces the global flags
func WithFlags(flags GlobalFlags) Option {
	return func(o *options) {
		o.flags = &flags
	}
}

// WithSite skips site resolution
func WithSite(site *config.Site) Option {
	return func(o *options) {
		o.site = site
	}
}

// WithProjectConfig skips the homebuddy.json lookup
func WithProjectConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.project = cfg
	}
}

// WithStorage sets the session storage
func WithStorage(store storage.Storage) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithHTTPClient sets the HTTP client used for API calls
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithNavigator sets where redirects are sent
func WithNavigator(nav browser.Navigator) Option {
	return func(o *options) {
		o.navigator = nav
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		out:   os.Stdout,
		flags: &globals,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		l := logger.GetLogger()
		o.logger = &l
	}
	return o
}

// runtime is everything a command needs to talk to one site
type runtime struct {
	out       io.Writer
	site      *config.Site
	session   *session.Session
	client    *client.Client
	navigator browser.Navigator
	store     storage.Storage
	backend   string
	logger    zerolog.Logger
}

func (r *runtime) Close() error {
	return r.store.Close()
}

// apiOrigin is where API requests go; a relative base means the page origin
func (r *runtime) apiOrigin() string {
	if base := r.session.URL(""); base != "" {
		return base
	}
	return r.session.Location.Origin()
}

// handlers returns the form handlers, notifying on the command output
func (r *runtime) handlers() *handlers.Handlers {
	return handlers.New(r.client, r.session, browser.WriterNotifier{Out: r.out}, r.navigator,
		handlers.WithLogger(r.logger))
}

// loadProjectConfig returns the project config, or nil when there is none
func (o *options) loadProjectConfig() *config.Config {
	if o.project != nil {
		return o.project
	}
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		o.logger.Debug().Err(err).Msg("No project config")
		return nil
	}
	o.project = cfg
	return cfg
}

func (o *options) loadEnv() (*appconfig.Config, error) {
	if o.env != nil {
		return o.env, nil
	}
	env, err := appconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	o.env = env
	return env, nil
}

// newRuntime resolves the site and opens its session
func newRuntime(o *options) (*runtime, error) {
	project := o.loadProjectConfig()

	site := o.site
	if site == nil {
		var err error
		site, err = siteselect.ResolveSite(project, o.flags.Site, o.flags.PageURL)
		if err != nil {
			return nil, err
		}
	}

	loc, err := environment.ParseLocation(site.URL)
	if err != nil {
		return nil, err
	}

	var resolver environment.Resolver
	if project != nil {
		resolver = project.Resolver()
	}

	store := o.store
	backend := "custom"
	if store == nil {
		store, backend, err = openStorage(o, loc.Origin())
		if err != nil {
			return nil, err
		}
	}

	nav := o.navigator
	if nav == nil {
		if o.flags.NoBrowser {
			nav = browser.PrintNavigator{PageURL: site.URL, Out: o.out}
		} else {
			nav = browser.NewSystemNavigator(site.URL, o.out)
		}
	}

	sess := session.New(loc, resolver, store)

	clientOpts := []client.Option{
		client.WithNavigator(nav),
		client.WithLogger(*o.logger),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(o.httpClient))
	}

	return &runtime{
		out:       o.out,
		site:      site,
		session:   sess,
		client:    client.New(sess, clientOpts...),
		navigator: nav,
		store:     store,
		backend:   backend,
		logger:    *o.logger,
	}, nil
}

// openStorage picks the backend: --ephemeral, then user config, then environment
func openStorage(o *options, origin string) (storage.Storage, string, error) {
	env, err := o.loadEnv()
	if err != nil {
		return nil, "", err
	}

	backend := env.Storage.Backend
	if o.flags.Ephemeral {
		backend = storage.BackendMemory
	} else if uc, err := userconfig.Load(); err == nil && uc.Storage != "" {
		backend = uc.Storage
	}

	store, err := storage.Open(storage.Options{
		Backend:     backend,
		Dir:         env.Storage.Dir,
		Origin:      origin,
		Keyring:     env.Storage.Keyring,
		KeyringKeys: []string{session.KeyAuthToken},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to open storage: %w", err)
	}
	if env.Storage.Keyring {
		backend += "+keyring"
	}
	return store, backend, nil
}

// firstNonEmpty returns the flag value, falling back to the env var
func firstNonEmpty(flag, envKey string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(envKey)
}

// readPassword prompts for a secret on the terminal
func readPassword(out io.Writer, prompt, hint string) (string, error) {
	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (%s)", hint)
	}

	fmt.Fprint(out, prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(out) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}
