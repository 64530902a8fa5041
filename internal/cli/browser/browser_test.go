package browser

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	page := "http://localhost:5500/Frontend/html/user/login.html"

	tests := map[string]string{
		"/Frontend/html/admin/admin-login.html":          "http://localhost:5500/Frontend/html/admin/admin-login.html",
		"Frontend/html/user/dashboard.html":              "http://localhost:5500/Frontend/html/user/Frontend/html/user/dashboard.html",
		"login.html":                                     "http://localhost:5500/Frontend/html/user/login.html",
		"https://homebuddy.vercel.app/index.html":        "https://homebuddy.vercel.app/index.html",
		"  /Frontend/html/provider/provider-login.html ": "http://localhost:5500/Frontend/html/provider/provider-login.html",
	}
	for target, want := range tests {
		got, err := Resolve(page, target)
		require.NoError(t, err)
		assert.Equal(t, want, got, "target %q", target)
	}
}

func TestSystemNavigator(t *testing.T) {
	var out bytes.Buffer
	var opened string

	nav := NewSystemNavigator("http://localhost:5500/Frontend/html/user/login.html", &out)
	nav.opener = func(u string) error {
		opened = u
		return nil
	}

	require.NoError(t, nav.Navigate("/Frontend/html/user/dashboard.html"))
	assert.Equal(t, "http://localhost:5500/Frontend/html/user/dashboard.html", opened)
	assert.Contains(t, out.String(), "Opening http://localhost:5500/Frontend/html/user/dashboard.html")
}

func TestSystemNavigator_OpenFailure(t *testing.T) {
	var out bytes.Buffer
	nav := NewSystemNavigator("http://localhost:5500/", &out)
	nav.opener = func(string) error { return errors.New("no display") }

	err := nav.Navigate("/x.html")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Please visit: http://localhost:5500/x.html"))
}

func TestPrintNavigatorAndNotifier(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, PrintNavigator{PageURL: "https://homebuddy.vercel.app/", Out: &out}.Navigate("login.html"))
	WriterNotifier{Out: &out}.Notify("Passwords do not match!")

	assert.Equal(t, "Next page: https://homebuddy.vercel.app/login.html\nPasswords do not match!\n", out.String())
}
