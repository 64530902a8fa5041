package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/homebuddy-dev/homebuddy/internal/cli/session"
)

// Output formats accepted by --output
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session for the current site",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(output, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")

	return cmd
}

// whoami is what the command reports
type whoami struct {
	Site          string            `json:"site" yaml:"site"`
	Authenticated bool              `json:"authenticated" yaml:"authenticated"`
	Subject       string            `json:"subject,omitempty" yaml:"subject,omitempty"`
	Role          string            `json:"role,omitempty" yaml:"role,omitempty"`
	ExpiresAt     *time.Time        `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Storage       map[string]string `json:"storage" yaml:"storage"`
}

func runWhoami(output string, opts ...Option) error {
	o := newOptions(opts)

	rt, err := newRuntime(o)
	if err != nil {
		return err
	}
	defer rt.Close()

	snapshot, err := rt.session.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	// The token is a secret; show only that one is held
	if tok, ok := snapshot[session.KeyAuthToken]; ok {
		snapshot[session.KeyAuthToken] = redact(tok)
	}

	info := whoami{Site: rt.site.URL, Storage: snapshot}

	claims, err := rt.session.Claims()
	switch {
	case errors.Is(err, session.ErrNoToken):
		// not logged in
	case err != nil:
		rt.logger.Warn().Err(err).Msg("Stored token is not a readable JWT")
		info.Authenticated = true
	default:
		info.Authenticated = true
		info.Subject = claims.Subject
		info.Role = claims.Role
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time
			info.ExpiresAt = &exp
		}
	}

	return writeOutput(o.out, output, info, func(w io.Writer) {
		printWhoami(w, info)
	})
}

func printWhoami(out io.Writer, info whoami) {
	if !info.Authenticated {
		fmt.Fprintf(out, "Not logged in to %s\n", info.Site)
		fmt.Fprintln(out, "\nLog in with: homebuddy login")
		return
	}

	fmt.Fprintf(out, "Logged in to %s\n", info.Site)
	if info.Subject != "" {
		fmt.Fprintf(out, "  Subject: %s\n", info.Subject)
	}
	if info.Role != "" {
		fmt.Fprintf(out, "  Role:    %s\n", info.Role)
	}
	if info.ExpiresAt != nil {
		fmt.Fprintf(out, "  Expires: %s\n", info.ExpiresAt.Format(time.RFC3339))
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	fmt.Fprintln(w, "───\t─────")
	for _, k := range sortedKeys(info.Storage) {
		fmt.Fprintf(w, "%s\t%s\n", k, info.Storage[k])
	}
	w.Flush()
}

func redact(token string) string {
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:6] + "…" + token[len(token)-4:]
}

// writeOutput renders v as json or yaml, or calls text for the default format
func writeOutput(out io.Writer, format string, v any, text func(io.Writer)) error {
	switch strings.ToLower(format) {
	case outputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case outputText, "":
		text(out)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use text, json or yaml)", format)
	}
}
