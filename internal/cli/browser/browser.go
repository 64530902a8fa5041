// Package browser stands in for the page's alert dialog and location changes.
package browser

import (
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// Notifier shows a blocking, user-facing message.
type Notifier interface {
	Notify(message string)
}

// Navigator sends the user to another page.
type Navigator interface {
	Navigate(target string) error
}

// WriterNotifier prints messages to a writer.
type WriterNotifier struct {
	Out io.Writer
}

func (n WriterNotifier) Notify(message string) {
	fmt.Fprintln(n.Out, message)
}

// Resolve resolves target against pageURL the way a browser resolves an
// href: absolute targets are kept, paths are taken relative to the page.
func Resolve(pageURL, target string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}
	ref, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return "", fmt.Errorf("invalid redirect target %q: %w", target, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// SystemNavigator opens redirect targets in the default browser.
type SystemNavigator struct {
	PageURL string
	Out     io.Writer
	// opener is swapped in tests
	opener func(string) error
}

// NewSystemNavigator creates a navigator relative to pageURL
func NewSystemNavigator(pageURL string, out io.Writer) *SystemNavigator {
	return &SystemNavigator{PageURL: pageURL, Out: out, opener: openBrowser}
}

func (n *SystemNavigator) Navigate(target string) error {
	dest, err := Resolve(n.PageURL, target)
	if err != nil {
		return err
	}

	fmt.Fprintf(n.Out, "Opening %s...\n", dest)

	if err := n.opener(dest); err != nil {
		return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, dest)
	}
	return nil
}

// PrintNavigator only reports where the user would be sent.
type PrintNavigator struct {
	PageURL string
	Out     io.Writer
}

func (n PrintNavigator) Navigate(target string) error {
	dest, err := Resolve(n.PageURL, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(n.Out, "Next page: %s\n", dest)
	return nil
}

// Recorder captures notifications and navigations.
type Recorder struct {
	Messages  []string
	Redirects []string
}

func (r *Recorder) Notify(message string) {
	r.Messages = append(r.Messages, message)
}

func (r *Recorder) Navigate(target string) error {
	r.Redirects = append(r.Redirects, target)
	return nil
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
