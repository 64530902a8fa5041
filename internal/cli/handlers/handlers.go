// Package handlers implements the login and registration form submissions:
// validate, issue one request, then persist the session and redirect or
// report a readable error.
package handlers

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/homebuddy-dev/homebuddy/internal/cli/browser"
	"github.com/homebuddy-dev/homebuddy/internal/cli/client"
	"github.com/homebuddy-dev/homebuddy/internal/cli/session"
)

var (
	// ErrPasswordMismatch is reported when the confirmation differs from the password.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidForm is reported for any other client-side validation failure.
	ErrInvalidForm = errors.New("invalid form")
	// ErrRequestFailed is reported when the server rejected the submission.
	ErrRequestFailed = errors.New("request failed")
)

// AuthAPI is the subset of the API client the forms use.
type AuthAPI interface {
	UnifiedLogin(ctx context.Context, email, password string) (*session.LoginResult, error)
	Register(ctx context.Context, req client.RegisterRequest) (*client.RegisterResponse, error)
}

// Outcome reports how a submission ended. Message is what the user was shown.
type Outcome struct {
	Success  bool
	Message  string
	Redirect string
	Err      error
}

// Handlers wires the forms to the API, the session and the user.
type Handlers struct {
	api       AuthAPI
	session   *session.Session
	notifier  browser.Notifier
	navigator browser.Navigator
	validate  *validator.Validate
	logger    zerolog.Logger
}

// Option configures Handlers
type Option func(*Handlers)

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handlers) {
		h.logger = logger
	}
}

// New creates form handlers
func New(api AuthAPI, sess *session.Session, notifier browser.Notifier, navigator browser.Navigator, opts ...Option) *Handlers {
	h := &Handlers{
		api:       api,
		session:   sess,
		notifier:  notifier,
		navigator: navigator,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// finish shows msg, follows redirect if any, and returns the outcome
func (h *Handlers) finish(out Outcome) Outcome {
	h.notifier.Notify(out.Message)
	if out.Redirect != "" {
		if err := h.navigator.Navigate(out.Redirect); err != nil {
			h.logger.Warn().Err(err).Str("target", out.Redirect).Msg("Redirect failed")
		}
	}
	return out
}
