// Package environment derives the HomeBuddy API base URL from the page the
// client is working against.
package environment

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultDevPort is the port the local API server listens on.
	DefaultDevPort = "8001"
)

// DefaultDeploymentHosts are hostname substrings that mark a deployed site
// whose API is served from the same origin.
var DefaultDeploymentHosts = []string{"vercel.app", "homebuddy"}

// Location is the subset of a page URL the resolver and the auth redirect
// check look at.
type Location struct {
	Protocol string // "http:" or "https:"
	Hostname string
	Port     string
	Pathname string
}

// Origin returns protocol//host[:port].
func (l Location) Origin() string {
	if l.Port == "" {
		return fmt.Sprintf("%s//%s", l.Protocol, l.Hostname)
	}
	return fmt.Sprintf("%s//%s:%s", l.Protocol, l.Hostname, l.Port)
}

// ParseLocation parses an absolute page URL.
func ParseLocation(rawURL string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Location{}, fmt.Errorf("invalid page URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return Location{}, fmt.Errorf("invalid page URL %q: scheme and host are required", rawURL)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	return Location{
		Protocol: strings.ToLower(u.Scheme) + ":",
		Hostname: strings.ToLower(u.Hostname()),
		Port:     u.Port(),
		Pathname: path,
	}, nil
}

// Resolver maps a Location to an API base URL. The zero value uses
// DefaultDevPort and DefaultDeploymentHosts.
type Resolver struct {
	DevPort         string
	DeploymentHosts []string
}

// Resolve returns the API base URL for loc:
//
//	localhost, 127.0.0.1          -> <protocol>//<hostname>:<dev port>
//	known deployment hostname     -> page origin
//	anything else                 -> "" (relative paths)
func (r Resolver) Resolve(loc Location) string {
	if IsLocal(loc.Hostname) {
		return fmt.Sprintf("%s//%s:%s", loc.Protocol, loc.Hostname, r.devPort())
	}

	for _, host := range r.deploymentHosts() {
		if host != "" && strings.Contains(loc.Hostname, host) {
			return loc.Origin()
		}
	}

	return ""
}

// IsLocal reports whether hostname is served by the development API.
func IsLocal(hostname string) bool {
	return hostname == "localhost" || hostname == "127.0.0.1"
}

func (r Resolver) devPort() string {
	if r.DevPort == "" {
		return DefaultDevPort
	}
	return r.DevPort
}

func (r Resolver) deploymentHosts() []string {
	if len(r.DeploymentHosts) == 0 {
		return DefaultDeploymentHosts
	}
	return r.DeploymentHosts
}

// Join composes a request URL from a base URL and an endpoint path. An empty
// base leaves the endpoint relative.
func Join(baseURL, endpoint string) string {
	if baseURL == "" {
		return endpoint
	}
	return strings.TrimRight(baseURL, "/") + endpoint
}
