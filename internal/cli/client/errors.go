package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/elnormous/contenttype"
)

// ErrorBody is what could be learned from a non-2xx response.
type ErrorBody struct {
	StatusCode int
	// Status is the server's status line, e.g. "404 Not Found".
	Status string
	// JSON reports whether the server declared a JSON body.
	JSON bool
	// Detail is the "detail" field of a JSON body, "" when absent.
	Detail string
	Raw    []byte
}

// StatusLine returns "<code> <reason>" with the reason phrase the server sent.
func (b *ErrorBody) StatusLine() string {
	code := strconv.Itoa(b.StatusCode)
	if reason, ok := strings.CutPrefix(b.Status, code); ok && b.Status != "" {
		return code + " " + strings.TrimSpace(reason)
	}
	return fmt.Sprintf("%d %s", b.StatusCode, http.StatusText(b.StatusCode))
}

// APIError is returned by the typed endpoint methods for non-2xx responses.
type APIError struct {
	Op   string
	Body *ErrorBody
	// DecodeErr is set when the server declared JSON but sent something else.
	DecodeErr error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.Body.StatusCode, e.Detail("Unknown error"))
}

// StatusCode returns the HTTP status of the failed call
func (e *APIError) StatusCode() int {
	return e.Body.StatusCode
}

// Detail returns a human-readable message: the JSON detail, fallback for
// JSON without one, or a generic server error for anything else.
func (e *APIError) Detail(fallback string) string {
	switch {
	case e.DecodeErr != nil:
		return fmt.Sprintf("Failed to parse error JSON: %s", e.Body.StatusLine())
	case e.Body.JSON && e.Body.Detail != "":
		return e.Body.Detail
	case e.Body.JSON:
		return fallback
	default:
		return fmt.Sprintf("Server Error: %s", e.Body.StatusLine())
	}
}

// IsJSON reports whether a Content-Type header value names a JSON body.
func IsJSON(header string) bool {
	if header == "" {
		return false
	}
	mt := contenttype.NewMediaType(header)
	if !strings.EqualFold(mt.Type, "application") {
		return false
	}
	subtype := strings.ToLower(mt.Subtype)
	return subtype == "json" || strings.HasSuffix(subtype, "+json")
}

// ReadError reads and closes resp.Body. The returned error is non-nil only
// when the body claims to be JSON and is not valid JSON. Detail is read only
// from JSON objects.
func ReadError(resp *http.Response) (*ErrorBody, error) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	body := &ErrorBody{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		JSON:       IsJSON(resp.Header.Get("Content-Type")),
		Raw:        raw,
	}
	if !body.JSON {
		return body, nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return body, fmt.Errorf("failed to decode error response: %w", err)
	}
	if _, ok := value.(map[string]any); !ok {
		return body, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return body, fmt.Errorf("failed to decode error response: %w", err)
	}

	detail, ok := fields["detail"]
	if !ok || bytes.Equal(bytes.TrimSpace(detail), []byte("null")) {
		return body, nil
	}

	var s string
	if err := json.Unmarshal(detail, &s); err == nil {
		body.Detail = s
	} else {
		// Validation errors arrive as a list of objects.
		body.Detail = string(detail)
	}

	return body, nil
}

// ErrorDetail extracts a message from a failed response, falling back to
// fallback for JSON bodies without a detail field.
func ErrorDetail(resp *http.Response, fallback string) string {
	body, err := ReadError(resp)
	if body == nil {
		return fallback
	}
	apiErr := &APIError{Body: body, DecodeErr: err}
	return apiErr.Detail(fallback)
}

func newAPIError(op string, resp *http.Response) *APIError {
	body, err := ReadError(resp)
	if body == nil {
		body = &ErrorBody{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return &APIError{Op: op, Body: body, DecodeErr: err}
}
