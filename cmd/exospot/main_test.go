package main

import (
	"strings"
	"testing"

	"github.com/glebovdev/exospot/internal/config"
)

func TestVersionText(t *testing.T) {
	text := versionText()

	firstLine := config.AppName + " v" + config.AppVersion + " - " + config.AppTagline
	if !strings.HasPrefix(text, firstLine+"\n") {
		t.Errorf("versionText() first line = %q, want %q", strings.SplitN(text, "\n", 2)[0], firstLine)
	}

	for _, want := range []string{config.AppDescription, config.AppAuthor, config.AppProjectURL} {
		if !strings.Contains(text, want) {
			t.Errorf("versionText() missing %q:\n%s", want, text)
		}
	}

	if !strings.HasSuffix(text, "\n") {
		t.Error("versionText() should end with a newline")
	}
}
