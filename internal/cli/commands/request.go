package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/homebuddy-dev/homebuddy/internal/cli/client"
)

// NewRequestCmd creates the request command
func NewRequestCmd() *cobra.Command {
	var (
		data    string
		headers []string
	)

	cmd := &cobra.Command{
		Use:   "request <method> <endpoint>",
		Short: "Send an authenticated request to the site's API",
		Long: `Send an authenticated request to the site's API.

The stored token is sent as a bearer token. A 401 response clears it and
sends you back to the login page for your role.`,
		Example: `  $ homebuddy request GET /api/auth/profile
  $ homebuddy request PUT /api/auth/profile --data '{"name":"Jane"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd.Context(), args[0], args[1], data, headers, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "Request body")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Extra header as 'Name: value' (repeatable)")

	return cmd
}

func runRequest(ctx context.Context, method, endpoint, data string, headers []string, opts ...Option) error {
	o := newOptions(opts)

	reqOpts := &client.RequestOptions{
		Method:  strings.ToUpper(method),
		Headers: map[string]string{},
	}
	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		reqOpts.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	if data != "" {
		reqOpts.Body = strings.NewReader(data)
	}

	rt, err := newRuntime(o)
	if err != nil {
		return err
	}
	defer rt.Close()

	resp, err := rt.client.MakeRequest(ctx, endpoint, reqOpts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	fmt.Fprintf(o.out, "%s %s\n", resp.Proto, resp.Status)
	if len(body) > 0 {
		if client.IsJSON(resp.Header.Get("Content-Type")) {
			var pretty bytes.Buffer
			if json.Indent(&pretty, body, "", "  ") == nil {
				body = pretty.Bytes()
			}
		}
		fmt.Fprintln(o.out, strings.TrimRight(string(body), "\n"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request failed with status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return nil
}
