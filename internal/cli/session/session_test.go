package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homebuddy-dev/homebuddy/internal/cli/environment"
	"github.com/homebuddy-dev/homebuddy/internal/cli/storage"
)

func newTestSession(t *testing.T, pageURL string) *Session {
	t.Helper()
	loc, err := environment.ParseLocation(pageURL)
	require.NoError(t, err)
	return New(loc, environment.Resolver{}, storage.NewMemory())
}

func TestNew_ResolvesBaseURL(t *testing.T) {
	s := newTestSession(t, "http://localhost:5500/Frontend/html/user/login.html")
	assert.Equal(t, "http://localhost:8001", s.BaseURL)
	assert.Equal(t, "http://localhost:8001/api/auth/login", s.URL("/api/auth/login"))

	s = newTestSession(t, "https://example.com/")
	assert.Equal(t, "/api/auth/login", s.URL("/api/auth/login"))
}

func TestTokenLifecycle(t *testing.T) {
	s := newTestSession(t, "http://localhost:5500/")

	token, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.SetToken("abc"))
	require.NoError(t, s.Storage.Set(KeyUserData, `{"id":1}`))
	require.NoError(t, s.Storage.Set(KeyRole, "user"))

	ok, err := s.IsAuthenticated()
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.RemoveToken())

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyRole: "user"}, snap)
}

func TestLoginPage(t *testing.T) {
	assert.Equal(t, ProviderLoginPage, LoginPage("/Frontend/html/provider/provider-dashboard.html"))
	assert.Equal(t, AdminLoginPage, LoginPage("/Frontend/html/admin/admin-dashboard.html"))
	assert.Equal(t, UserLoginPage, LoginPage("/Frontend/html/user/dashboard.html"))
	assert.Equal(t, UserLoginPage, LoginPage("/"))
	assert.Equal(t, UserLoginPage, LoginPage("/providers.html"))
}

func TestCheckAuth(t *testing.T) {
	s := newTestSession(t, "http://localhost:5500/Frontend/html/admin/users.html")

	page, redirect, err := s.CheckAuth()
	require.NoError(t, err)
	assert.True(t, redirect)
	assert.Equal(t, AdminLoginPage, page)

	require.NoError(t, s.SetToken("abc"))
	page, redirect, err = s.CheckAuth()
	require.NoError(t, err)
	assert.False(t, redirect)
	assert.Empty(t, page)
}

func TestApplyLogin(t *testing.T) {
	tests := []struct {
		name   string
		result LoginResult
		want   map[string]string
	}{
		{
			name: "user",
			result: LoginResult{
				AccessToken: "tok", Role: RoleUser, UserID: "7", Name: "Ana", Email: "ana@example.com",
			},
			want: map[string]string{
				KeyAuthToken: "tok", KeyRole: "user",
				KeyUserID: "7", KeyUserName: "Ana", KeyUserEmail: "ana@example.com",
			},
		},
		{
			name: "provider",
			result: LoginResult{
				AccessToken: "tok", Role: RoleProvider, UserID: "7", ProviderID: "3", Name: "Bo", Email: "bo@example.com",
			},
			want: map[string]string{
				KeyAuthToken: "tok", KeyRole: "provider",
				KeyProviderID: "3", KeyUserID: "7", KeyProviderName: "Bo", KeyProviderEmail: "bo@example.com",
			},
		},
		{
			name:   "admin",
			result: LoginResult{AccessToken: "tok", Role: RoleAdmin},
			want: map[string]string{
				KeyAuthToken: "tok", KeyRole: "admin", KeyAdminLoggedIn: "true",
			},
		},
		{
			name:   "no token in response",
			result: LoginResult{Role: RoleAdmin},
			want:   map[string]string{KeyRole: "admin", KeyAdminLoggedIn: "true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, "http://localhost:5500/")
			require.NoError(t, s.Storage.Set("stale", "x"))
			require.NoError(t, s.Storage.Set(KeyUserData, "old"))

			require.NoError(t, s.ApplyLogin(tt.result))

			snap, err := s.Snapshot()
			require.NoError(t, err)
			assert.Equal(t, tt.want, snap)
		})
	}
}

func TestLoginResult_DecodesNumericIDs(t *testing.T) {
	var res LoginResult
	body := `{"access_token":"t","role":"provider","user_id":12,"provider_id":"p-4","name":"Bo","redirect":"Frontend/html/provider/provider-dashboard.html"}`
	require.NoError(t, json.Unmarshal([]byte(body), &res))

	assert.Equal(t, ID("12"), res.UserID)
	assert.Equal(t, ID("p-4"), res.ProviderID)
	assert.Equal(t, RoleProvider, res.Role)

	require.NoError(t, json.Unmarshal([]byte(`{"user_id":null}`), &res))
	assert.Equal(t, ID(""), res.UserID)

	assert.Error(t, json.Unmarshal([]byte(`{"user_id":true}`), &res))
}

func TestClaims(t *testing.T) {
	s := newTestSession(t, "http://localhost:5500/")

	_, err := s.Claims()
	assert.ErrorIs(t, err, ErrNoToken)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "42",
		"role": "provider",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("server-only-secret"))
	require.NoError(t, err)
	require.NoError(t, s.SetToken(signed))

	claims, err := s.Claims()
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "provider", claims.Role)
	assert.NotNil(t, claims.ExpiresAt)

	require.NoError(t, s.SetToken("not-a-jwt"))
	_, err = s.Claims()
	assert.Error(t, err)
}
