package session

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an identifier the API may send as a JSON number or string.
type ID string

// UnmarshalJSON accepts 42, "42" and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// LoginResult is the body of a successful unified login.
type LoginResult struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        Role   `json:"role"`
	UserID      ID     `json:"user_id"`
	ProviderID  ID     `json:"provider_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Redirect    string `json:"redirect"`
}
