// Package session holds the client's per-site context: where the page is,
// which API it talks to, and the persisted session state.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/homebuddy-dev/homebuddy/internal/cli/environment"
	"github.com/homebuddy-dev/homebuddy/internal/cli/storage"
)

// ErrNoToken is returned by Claims when no token is stored.
var ErrNoToken = errors.New("not authenticated. Please run 'homebuddy login' first")

// Session is the explicit replacement for page-global state. Request issuing
// code receives one instead of reading process-wide values.
type Session struct {
	Location environment.Location
	BaseURL  string
	Storage  storage.Storage
}

// New resolves the base URL for loc once and binds it to store.
func New(loc environment.Location, resolver environment.Resolver, store storage.Storage) *Session {
	return &Session{
		Location: loc,
		BaseURL:  resolver.Resolve(loc),
		Storage:  store,
	}
}

// URL returns the request URL for endpoint.
func (s *Session) URL(endpoint string) string {
	return environment.Join(s.BaseURL, endpoint)
}

// Token returns the stored token, or "" when there is none.
func (s *Session) Token() (string, error) {
	token, ok, err := s.Storage.Get(KeyAuthToken)
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// SetToken persists token.
func (s *Session) SetToken(token string) error {
	if err := s.Storage.Set(KeyAuthToken, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// RemoveToken deletes the token and the cached user data.
func (s *Session) RemoveToken() error {
	if err := s.Storage.Remove(KeyAuthToken); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if err := s.Storage.Remove(KeyUserData); err != nil {
		return fmt.Errorf("failed to delete user data: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a token is stored.
func (s *Session) IsAuthenticated() (bool, error) {
	token, err := s.Token()
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// CheckAuth returns the login page to send the user to when no token is
// stored. redirect is false while a token is present.
func (s *Session) CheckAuth() (page string, redirect bool, err error) {
	ok, err := s.IsAuthenticated()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", false, nil
	}
	return LoginPage(s.Location.Pathname), true, nil
}

// LoginPage picks the login page for a path: provider and admin areas have
// their own, everything else uses the user login.
func LoginPage(pathname string) string {
	switch {
	case strings.Contains(pathname, "/provider/"):
		return ProviderLoginPage
	case strings.Contains(pathname, "/admin/"):
		return AdminLoginPage
	default:
		return UserLoginPage
	}
}

// ApplyLogin replaces all stored state with the fields of a successful login.
func (s *Session) ApplyLogin(res LoginResult) error {
	if err := s.Storage.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	if res.AccessToken != "" {
		if err := s.SetToken(res.AccessToken); err != nil {
			return err
		}
	}

	fields := [][2]string{{KeyRole, string(res.Role)}}

	switch res.Role {
	case RoleUser:
		fields = append(fields,
			[2]string{KeyUserID, string(res.UserID)},
			[2]string{KeyUserName, res.Name},
			[2]string{KeyUserEmail, res.Email},
		)
	case RoleProvider:
		fields = append(fields,
			[2]string{KeyProviderID, string(res.ProviderID)},
			[2]string{KeyUserID, string(res.UserID)},
			[2]string{KeyProviderName, res.Name},
			[2]string{KeyProviderEmail, res.Email},
		)
	case RoleAdmin:
		fields = append(fields, [2]string{KeyAdminLoggedIn, "true"})
	}

	for _, f := range fields {
		if err := s.Storage.Set(f[0], f[1]); err != nil {
			return fmt.Errorf("failed to save %s: %w", f[0], err)
		}
	}

	return nil
}

// Snapshot returns every stored key and value.
func (s *Session) Snapshot() (map[string]string, error) {
	keys, err := s.Storage.Keys()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := s.Storage.Get(k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

// Claims are the token fields the client cares about.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Claims decodes the stored token without verifying its signature.
func (s *Session) Claims() (*Claims, error) {
	token, err := s.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return claims, nil
}
