package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/homebuddy-dev/homebuddy/internal/cli/session"
)

// API endpoints
const (
	UnifiedLoginPath  = "/api/auth/unified_login"
	LoginPath         = "/api/auth/login"
	ProviderLoginPath = "/api/auth/provider/login"
	RegisterPath      = "/api/auth/register"
	ProfilePath       = "/api/auth/profile"
)

// Credentials is the login request body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginResponse is returned by the user-only login endpoint
type UserLoginResponse struct {
	Message     string       `json:"message"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	UserID      session.ID   `json:"user_id"`
	UserName    string       `json:"user_name"`
	Email       string       `json:"email"`
	Role        session.Role `json:"role"`
}

// ProviderLoginResponse is returned by the legacy provider login endpoint
type ProviderLoginResponse struct {
	Message     string     `json:"message"`
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ProviderID  session.ID `json:"provider_id"`
	UserID      session.ID `json:"user_id"`
	FullName    string     `json:"full_name"`
}

// RegisterRequest is the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

// RegisterResponse is returned on successful registration
type RegisterResponse struct {
	Message string     `json:"message"`
	UserID  session.ID `json:"user_id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
}

// Profile is the authenticated user's profile
type Profile struct {
	ID      session.ID `json:"id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Phone   string     `json:"phone"`
	Address string     `json:"address"`
	Role    string     `json:"role"`
}

// ProfileUpdate is the profile update request body
type ProfileUpdate struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// UnifiedLogin authenticates a user, provider or admin with one form.
func (c *Client) UnifiedLogin(ctx context.Context, email, password string) (*session.LoginResult, error) {
	var result session.LoginResult
	if err := c.postJSON(ctx, "login", UnifiedLoginPath, Credentials{Email: email, Password: password}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates against the user-only endpoint
func (c *Client) Login(ctx context.Context, email, password string) (*UserLoginResponse, error) {
	var result UserLoginResponse
	if err := c.postJSON(ctx, "login", LoginPath, Credentials{Email: email, Password: password}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProviderLogin authenticates against the legacy provider endpoint
func (c *Client) ProviderLogin(ctx context.Context, email, password string) (*ProviderLoginResponse, error) {
	var result ProviderLoginResponse
	if err := c.postJSON(ctx, "provider login", ProviderLoginPath, Credentials{Email: email, Password: password}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates a new user account. Any 2xx counts as success; the
// response body is decoded only when it holds JSON.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := c.post(ctx, RegisterPath, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError("registration", resp)
	}

	var result RegisterResponse
	c.decodeOptional(resp, &result)
	return &result, nil
}

// Profile returns the profile of the logged-in user
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	resp, err := c.MakeRequest(ctx, ProfilePath, &RequestOptions{Method: http.MethodGet})
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := decodeResponse("get profile", resp, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile replaces the profile of the logged-in user
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	jsonData, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.MakeRequest(ctx, ProfilePath, &RequestOptions{
		Method: http.MethodPut,
		Body:   bytes.NewReader(jsonData),
	})
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := decodeResponse("update profile", resp, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// post sends an unauthenticated JSON POST, as the public forms do
func (c *Client) post(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	return c.Fetch(ctx, endpoint, &RequestOptions{
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    bytes.NewReader(jsonData),
	})
}

func (c *Client) postJSON(ctx context.Context, op, endpoint string, body, result any) error {
	resp, err := c.post(ctx, endpoint, body)
	if err != nil {
		return err
	}
	return decodeResponse(op, resp, result)
}

// decodeOptional drains a success body, decoding it into result when it parses
func (c *Client) decodeOptional(resp *http.Response, result any) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return
	}
	if err := json.Unmarshal(raw, result); err != nil {
		c.logger.Debug().Err(err).Int("status", resp.StatusCode).Msg("Ignoring undecodable response body")
	}
}

func decodeResponse(op string, resp *http.Response, result any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(op, resp)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
