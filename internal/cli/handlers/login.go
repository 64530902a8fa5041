package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/homebuddy-dev/homebuddy/internal/cli/client"
	"github.com/homebuddy-dev/homebuddy/internal/cli/session"
)

// LoginForm holds the login form fields
type LoginForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// dashboards are used when a successful login names no redirect
var dashboards = map[session.Role]string{
	session.RoleUser:     "/Frontend/html/user/dashboard.html",
	session.RoleProvider: "/Frontend/html/provider/provider-dashboard.html",
	session.RoleAdmin:    "/Frontend/html/admin/admin-dashboard.html",
}

// Login submits the unified login form.
func (h *Handlers) Login(ctx context.Context, form LoginForm) Outcome {
	form.Email = strings.TrimSpace(form.Email)

	if err := h.validate.Struct(form); err != nil {
		return h.finish(Outcome{
			Message: fmt.Sprintf("Login failed: %s", describe(err)),
			Err:     fmt.Errorf("%w: %v", ErrInvalidForm, err),
		})
	}

	h.logger.Info().Str("url", h.session.URL(client.UnifiedLoginPath)).Msg("Attempting login")

	result, err := h.api.UnifiedLogin(ctx, form.Email, form.Password)
	if err != nil {
		return h.finish(loginFailure(err))
	}

	if err := h.session.ApplyLogin(*result); err != nil {
		return h.finish(Outcome{
			Message: fmt.Sprintf("An error occurred: %v", err),
			Err:     err,
		})
	}

	redirect := result.Redirect
	if redirect == "" {
		redirect = dashboards[result.Role]
	}

	h.logger.Info().Str("role", string(result.Role)).Msg("Login successful")

	return h.finish(Outcome{
		Success:  true,
		Message:  fmt.Sprintf("Welcome back! Logging in as %s...", result.Role),
		Redirect: redirect,
	})
}

func loginFailure(err error) Outcome {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.DecodeErr != nil {
		return Outcome{
			Message: fmt.Sprintf("An error occurred: %v", err),
			Err:     err,
		}
	}

	return Outcome{
		Message: fmt.Sprintf("Login failed: %s", apiErr.Detail("Invalid credentials")),
		Err:     fmt.Errorf("%w: %v", ErrRequestFailed, err),
	}
}
