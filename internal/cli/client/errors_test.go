package client

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func recorded(status int, contentType, body string) *http.Response {
	rec := httptest.NewRecorder()
	if contentType != "" {
		rec.Header().Set("Content-Type", contentType)
	}
	rec.WriteHeader(status)
	rec.WriteString(body)
	return rec.Result()
}

func TestIsJSON(t *testing.T) {
	assert.True(t, IsJSON("application/json"))
	assert.True(t, IsJSON("application/json; charset=utf-8"))
	assert.True(t, IsJSON("Application/JSON"))
	assert.True(t, IsJSON("application/problem+json"))
	assert.False(t, IsJSON("text/html; charset=utf-8"))
	assert.False(t, IsJSON("text/json-ish"))
	assert.False(t, IsJSON(""))
}

func TestErrorDetail(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		want        string
	}{
		{
			name:        "json detail",
			status:      http.StatusUnauthorized,
			contentType: "application/json",
			body:        `{"detail":"Invalid email or password"}`,
			want:        "Invalid email or password",
		},
		{
			name:        "json without detail",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"error":"nope"}`,
			want:        "Invalid credentials",
		},
		{
			name:        "json null detail",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"detail":null}`,
			want:        "Invalid credentials",
		},
		{
			name:        "validation list detail",
			status:      http.StatusUnprocessableEntity,
			contentType: "application/json",
			body:        `{"detail":[{"loc":["body","email"],"msg":"field required"}]}`,
			want:        `[{"loc":["body","email"],"msg":"field required"}]`,
		},
		{
			name:        "html error page",
			status:      http.StatusMethodNotAllowed,
			contentType: "text/html",
			body:        "<html>405</html>",
			want:        "Server Error: 405 Method Not Allowed",
		},
		{
			name:        "json array",
			status:      http.StatusInternalServerError,
			contentType: "application/json",
			body:        `["boom"]`,
			want:        "Invalid credentials",
		},
		{
			name:        "json string",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `"nope"`,
			want:        "Invalid credentials",
		},
		{
			name:        "broken json",
			status:      http.StatusInternalServerError,
			contentType: "application/json",
			body:        "Internal Server Error",
			want:        "Failed to parse error JSON: 500 Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := recorded(tt.status, tt.contentType, tt.body)
			assert.Equal(t, tt.want, ErrorDetail(resp, "Invalid credentials"))
		})
	}
}

func TestReadError_KeepsRawBody(t *testing.T) {
	body, err := ReadError(recorded(http.StatusBadRequest, "application/json", `{"message":"x"}`))
	assert.NoError(t, err)
	assert.True(t, body.JSON)
	assert.Empty(t, body.Detail)
	assert.JSONEq(t, `{"message":"x"}`, string(body.Raw))
	assert.Equal(t, "400 Bad Request", body.StatusLine())
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{
		Op:   "login",
		Body: &ErrorBody{StatusCode: 401, JSON: true, Detail: "Invalid email or password"},
	}
	assert.Equal(t, "login failed (status 401): Invalid email or password", err.Error())
	assert.Equal(t, 401, err.StatusCode())
}

func TestReadError_NonObjectJSON(t *testing.T) {
	body, err := ReadError(recorded(http.StatusBadRequest, "application/json", `["boom"]`))
	assert.NoError(t, err)
	assert.True(t, body.JSON)
	assert.Empty(t, body.Detail)
	assert.Equal(t, `["boom"]`, string(body.Raw))
}

func TestStatusLine_UsesServerReason(t *testing.T) {
	resp := recorded(http.StatusTeapot, "text/plain", "short and stout")
	resp.Status = "418 Short And Stout"

	body, err := ReadError(resp)
	assert.NoError(t, err)
	assert.Equal(t, "418 Short And Stout", body.StatusLine())

	bare := &ErrorBody{StatusCode: http.StatusNotFound}
	assert.Equal(t, "404 Not Found", bare.StatusLine())
}
