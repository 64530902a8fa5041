package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/homebuddy-dev/homebuddy/internal/cli/client"
	"github.com/homebuddy-dev/homebuddy/internal/cli/session"
)

// RegisterForm holds the registration form fields
type RegisterForm struct {
	Name            string `validate:"required"`
	Email           string `validate:"required,email"`
	Phone           string
	Address         string
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

// Register submits the registration form. A confirmation mismatch is caught
// before any request is made.
func (h *Handlers) Register(ctx context.Context, form RegisterForm) Outcome {
	form.Email = strings.TrimSpace(form.Email)

	if form.Password != form.ConfirmPassword {
		return h.finish(Outcome{
			Message: "Passwords do not match!",
			Err:     ErrPasswordMismatch,
		})
	}

	if err := h.validate.Struct(form); err != nil {
		return h.finish(Outcome{
			Message: fmt.Sprintf("Registration failed: %s", describe(err)),
			Err:     fmt.Errorf("%w: %v", ErrInvalidForm, err),
		})
	}

	h.logger.Info().Str("url", h.session.URL(client.RegisterPath)).Msg("Attempting registration")

	_, err := h.api.Register(ctx, client.RegisterRequest{
		Name:     form.Name,
		Email:    form.Email,
		Phone:    form.Phone,
		Address:  form.Address,
		Password: form.Password,
	})
	if err != nil {
		return h.finish(h.registerFailure(err))
	}

	return h.finish(Outcome{
		Success:  true,
		Message:  "Registration successful! Redirecting to login...",
		Redirect: session.UserLoginPage,
	})
}

func (h *Handlers) registerFailure(err error) Outcome {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		h.logger.Error().Err(err).Msg("Registration request failed")
		return Outcome{
			Message: fmt.Sprintf("An error occurred: %v", err),
			Err:     err,
		}
	}

	var detail string
	switch {
	case apiErr.DecodeErr != nil:
		detail = apiErr.Detail("")
	case apiErr.Body.JSON:
		detail = apiErr.Detail(compact(apiErr.Body.Raw))
	default:
		h.logger.Error().Str("body", string(apiErr.Body.Raw)).Msg("Non-JSON error response")
		detail = fmt.Sprintf("Server Error: %s. Check console for details.", apiErr.Body.StatusLine())
	}

	return Outcome{
		Message: fmt.Sprintf("Registration failed: %s", detail),
		Err:     fmt.Errorf("%w: %v", ErrRequestFailed, err),
	}
}

// compact renders a JSON body on one line
func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}

// describe turns validation errors into a short sentence
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%q is not a valid email address", fe.Value())
	case "eqfield":
		return "Passwords do not match!"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
