package commands

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/homebuddy-dev/homebuddy/internal/cli/client"
)

// NewEnvCmd creates the env command
func NewEnvCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Show how the current site resolves to an API base URL",
		Long: `Show how the current site resolves to an API base URL.

Pages served from localhost or 127.0.0.1 talk to the development API on port
8001. Pages on a known deployment host use their own origin. Anything else
uses relative URLs against the page origin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(output, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")

	return cmd
}

// envInfo is what the env command reports
type envInfo struct {
	Site          string `json:"site" yaml:"site"`
	PageURL       string `json:"page_url" yaml:"page_url"`
	Origin        string `json:"origin" yaml:"origin"`
	BaseURL       string `json:"base_url" yaml:"base_url"`
	LoginURL      string `json:"login_url" yaml:"login_url"`
	Storage       string `json:"storage" yaml:"storage"`
	Authenticated bool   `json:"authenticated" yaml:"authenticated"`
}

func runEnv(output string, opts ...Option) error {
	o := newOptions(opts)

	rt, err := newRuntime(o)
	if err != nil {
		return err
	}
	defer rt.Close()

	authed, err := rt.session.IsAuthenticated()
	if err != nil {
		return err
	}

	info := envInfo{
		Site:          rt.site.Alias,
		PageURL:       rt.site.URL,
		Origin:        rt.session.Location.Origin(),
		BaseURL:       rt.session.BaseURL,
		LoginURL:      rt.session.URL(client.UnifiedLoginPath),
		Storage:       rt.backend,
		Authenticated: authed,
	}

	return writeOutput(o.out, output, info, func(out io.Writer) {
		base := info.BaseURL
		if base == "" {
			base = "(relative to page origin)"
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Site:\t%s\n", info.Site)
		fmt.Fprintf(w, "Page URL:\t%s\n", info.PageURL)
		fmt.Fprintf(w, "Origin:\t%s\n", info.Origin)
		fmt.Fprintf(w, "API base URL:\t%s\n", base)
		fmt.Fprintf(w, "Login endpoint:\t%s\n", info.LoginURL)
		fmt.Fprintf(w, "Storage:\t%s\n", info.Storage)
		fmt.Fprintf(w, "Authenticated:\t%t\n", info.Authenticated)
		w.Flush()
	})
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
