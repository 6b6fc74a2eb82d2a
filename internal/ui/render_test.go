package ui

import (
	"image"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/exospot/internal/config"
	"github.com/glebovdev/exospot/internal/track"
)

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	screen.SetSize(120, 40)
	t.Cleanup(screen.Fini)
	return screen
}

func screenText(screen tcell.SimulationScreen) string {
	cells, width, height := screen.GetContents()
	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cell := cells[y*width+x]
			if len(cell.Runes) > 0 {
				b.WriteRune(cell.Runes[0])
			} else {
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func testColors() Colors {
	return ColorsFromTheme(config.DefaultConfig().Theme)
}

func TestRenderWelcome(t *testing.T) {
	screen := newSimScreen(t)
	NewRenderer(screen, testColors()).Draw(Welcome{}, Snapshot[ListItem]{})

	if text := screenText(screen); !strings.Contains(text, WelcomeText) {
		t.Errorf("welcome screen does not contain %q", WelcomeText)
	}
}

func TestRenderTrackView(t *testing.T) {
	screen := newSimScreen(t)
	colors := testColors()

	list := NewSelectableList([]ListItem{
		{Label: "Genesis", Tag: colors.Foreground},
		{Label: "Phantom", Tag: colors.Foreground},
	}).Snapshot()
	view := TrackView{
		Details: track.Details{
			Track: track.Track{
				Title:      "Genesis",
				Artist:     "Justice",
				Duration:   3*time.Minute + 54*time.Second,
				PreviewURL: "http://preview.test/genesis.mp3",
			},
			Album: track.Album{Name: "Cross", Kind: "album"},
		},
		Notice: "Preview failed (fetch): connection refused by server",
	}

	NewRenderer(screen, colors).Draw(view, list)
	text := screenText(screen)

	for _, want := range []string{
		ListTitle + " (2)",
		SelectionSymbol + "Genesis",
		"Phantom",
		"Title: Genesis",
		"Duration: 03:54",
		"Artist: Justice",
		"Album: Cross (album)",
		"Preview failed (fetch)",
		"preview",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("track view does not contain %q", want)
		}
	}
	if strings.Contains(text, SelectionSymbol+"Phantom") {
		t.Error("only the selected entry gets the selection symbol")
	}
}

func TestRenderSelectedRowStyle(t *testing.T) {
	screen := newSimScreen(t)
	colors := testColors()
	list := NewSelectableList([]ListItem{{Label: "Genesis", Tag: colors.Foreground}}).Snapshot()

	NewRenderer(screen, colors).Draw(TrackView{}, list)

	// Row 1 is below the top border, column 1 is inside the left border.
	_, _, style, _ := screen.GetContent(1, 1)
	fg, bg, attrs := style.Decompose()
	if bg != colors.Highlight || fg != colors.HighlightText {
		t.Errorf("selected row colors = %v on %v, want %v on %v", fg, bg, colors.HighlightText, colors.Highlight)
	}
	if attrs&tcell.AttrBold == 0 {
		t.Error("selected row should be bold")
	}
}

func TestRenderCoverIsReused(t *testing.T) {
	screen := newSimScreen(t)
	r := NewRenderer(screen, testColors())

	view := TrackView{Details: track.Details{
		CoverURLs: []string{"http://covers.test/large.jpg"},
		Cover:     image.NewRGBA(image.Rect(0, 0, 4, 4)),
	}}

	r.Draw(view, Snapshot[ListItem]{})
	first := r.coverView
	r.Draw(view, Snapshot[ListItem]{})
	if r.coverView != first {
		t.Error("cover for the same URL should be reused")
	}

	view.Details.CoverURLs = []string{"http://covers.test/other.jpg"}
	r.Draw(view, Snapshot[ListItem]{})
	if r.coverView == first {
		t.Error("a different cover URL should build a new image")
	}
}

func TestHelpTextWithoutPreview(t *testing.T) {
	r := NewRenderer(nil, testColors())
	if text := r.helpText(false); !strings.Contains(text, "no preview") {
		t.Errorf("helpText(false) = %q, want a no-preview hint", text)
	}
}
