package headless

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/JakeFAU/webanalysis/internal/fetcher"
)

// ErrNotConfigured is wrapped by Noop fetch failures.
var ErrNotConfigured = errors.New("headless fetcher not configured")

// Noop implements fetcher.Fetcher but always fails; it stands in when no
// browser is available in the current environment.
type Noop struct{}

// NewNoop creates a new Noop fetcher.
func NewNoop() *Noop {
	return &Noop{}
}

// Fetch returns a FetchError wrapping ErrNotConfigured.
func (Noop) Fetch(_ context.Context, request fetcher.Request) (fetcher.Response, error) {
	return fetcher.Response{}, fetcher.TransportError(fetcher.SourceHeadless, request.URL, ErrNotConfigured)
}

var browserNames = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
	"chrome",
}

// LookupBrowser finds a Chrome or Chromium binary on PATH. It wraps
// ErrNotConfigured when none is installed.
func LookupBrowser() (string, error) {
	for _, name := range browserNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no chrome binary on PATH: %w", ErrNotConfigured)
}
