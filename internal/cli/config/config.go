package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/homebuddy-dev/homebuddy/internal/cli/environment"
)

// Config file names, in lookup order
const (
	ConfigFileName     = "homebuddy.json"
	YAMLConfigFileName = "homebuddy.yaml"
)

// Site is a HomeBuddy deployment the CLI can work against
type Site struct {
	Alias string `json:"alias" yaml:"alias"`
	URL   string `json:"url" yaml:"url"` // page URL, e.g. http://localhost:5500/Frontend/html/user/login.html
}

// Config represents the CLI project configuration file
type Config struct {
	Sites []Site `json:"sites" yaml:"sites"`

	// Hostname substrings that mark a same-origin deployment. Empty = defaults.
	DeploymentHosts []string `json:"deployment_hosts,omitempty" yaml:"deployment_hosts,omitempty"`

	// Port of the local API server. Empty = 8001.
	DevAPIPort string `json:"dev_api_port,omitempty" yaml:"dev_api_port,omitempty"`
}

// DefaultConfig returns a default configuration with an example site
func DefaultConfig() *Config {
	return &Config{
		Sites: []Site{
			{
				Alias: "local",
				URL:   "http://localhost:5500/Frontend/html/user/login.html",
			},
		},
	}
}

// Resolver returns the environment resolver configured by this file
func (c *Config) Resolver() environment.Resolver {
	return environment.Resolver{
		DevPort:         c.DevAPIPort,
		DeploymentHosts: c.DeploymentHosts,
	}
}

// FindConfigFile searches for homebuddy.json or homebuddy.yaml in the current
// directory and its parents
func FindConfigFile() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	// Search upwards until we find a config file or reach root
	dir := currentDir
	for {
		for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found in %s or any parent directory", ConfigFileName, currentDir)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads config from current directory or parent directories
func LoadFromCurrentDir() (*Config, error) {
	configPath, err := FindConfigFile()
	if err != nil {
		return nil, err
	}

	return Load(configPath)
}

// Save writes the configuration to a file
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetSiteByAlias returns a site by its alias
func (c *Config) GetSiteByAlias(alias string) (*Site, error) {
	for i := range c.Sites {
		if c.Sites[i].Alias == alias {
			return &c.Sites[i], nil
		}
	}
	return nil, fmt.Errorf("site with alias '%s' not found", alias)
}

// GetSiteByURL returns a site by its page URL
func (c *Config) GetSiteByURL(url string) (*Site, error) {
	for i := range c.Sites {
		if c.Sites[i].URL == url {
			return &c.Sites[i], nil
		}
	}
	return nil, fmt.Errorf("site with URL '%s' not found", url)
}

// GetDefaultSite returns the first site in the list
func (c *Config) GetDefaultSite() (*Site, error) {
	if len(c.Sites) == 0 {
		return nil, fmt.Errorf("no sites configured in %s", ConfigFileName)
	}
	return &c.Sites[0], nil
}
