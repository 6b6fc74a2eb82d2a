// Package external opens a web search for the current track in the user's browser.
package external

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
)

// The launcher's output would land on the TUI.
func init() {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

var openURL = browser.OpenURL

// SearchURL fills template's single %s with the escaped "artist title" query.
func SearchURL(template, artist, title string) (string, error) {
	if strings.Count(template, "%s") != 1 {
		return "", fmt.Errorf("search URL %q must contain exactly one %%s", template)
	}

	query := strings.TrimSpace(strings.Join(strings.Fields(artist+" "+title), " "))
	if query == "" {
		return "", fmt.Errorf("nothing to search for")
	}

	return fmt.Sprintf(template, url.QueryEscape(query)), nil
}

// Open hands target to the system browser without waiting for it.
func Open(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: scheme must be http or https", target)
	}

	if err := openURL(target); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	log.Debug().Str("url", target).Msg("Opened in browser")
	return nil
}
