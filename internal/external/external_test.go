package external

import (
	"errors"
	"testing"
)

func TestSearchURL(t *testing.T) {
	const tmpl = "https://www.youtube.com/results?search_query=%s"

	tests := []struct {
		name     string
		template string
		artist   string
		title    string
		expected string
		wantErr  bool
	}{
		{
			name:     "simple",
			template: tmpl,
			artist:   "Daft Punk",
			title:    "One More Time",
			expected: "https://www.youtube.com/results?search_query=Daft+Punk+One+More+Time",
		},
		{
			name:     "escapes reserved characters",
			template: tmpl,
			artist:   "AC/DC",
			title:    "T.N.T & more?",
			expected: "https://www.youtube.com/results?search_query=AC%2FDC+T.N.T+%26+more%3F",
		},
		{
			name:     "collapses whitespace",
			template: tmpl,
			artist:   "  Justice ",
			title:    "Genesis  ",
			expected: "https://www.youtube.com/results?search_query=Justice+Genesis",
		},
		{
			name:     "empty query",
			template: tmpl,
			wantErr:  true,
		},
		{
			name:     "template without placeholder",
			template: "https://example.com/search",
			artist:   "a",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SearchURL(tt.template, tt.artist, tt.title)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SearchURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("SearchURL() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	orig := openURL
	t.Cleanup(func() { openURL = orig })

	var opened []string
	openURL = func(u string) error {
		opened = append(opened, u)
		return nil
	}

	if err := Open("https://www.youtube.com/results?search_query=x"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(opened) != 1 {
		t.Fatalf("browser opened %d times, want 1", len(opened))
	}

	if err := Open("file:///etc/passwd"); err == nil {
		t.Error("Open() should refuse non-http schemes")
	}
	if len(opened) != 1 {
		t.Error("refused URL must not reach the browser")
	}
}

func TestOpenBrowserFailure(t *testing.T) {
	orig := openURL
	t.Cleanup(func() { openURL = orig })
	openURL = func(string) error { return errors.New("no browser") }

	if err := Open("https://example.com"); err == nil {
		t.Error("Open() should report browser failures")
	}
}
