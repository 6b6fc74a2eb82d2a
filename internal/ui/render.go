package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/exospot/internal/config"
	"github.com/glebovdev/exospot/internal/track"
	"github.com/rivo/tview"
)

const (
	WelcomeText     = "Welcome to " + config.AppName
	ListTitle       = "List"
	SelectionSymbol = ">> "
	InfoHeight      = 6
	listWeight      = 1 // 20%
	panelWeight     = 4 // 80%
)

// Colors is the resolved theme.
type Colors struct {
	Background    tcell.Color
	Foreground    tcell.Color
	Borders       tcell.Color
	Highlight     tcell.Color
	HighlightText tcell.Color
	Played        tcell.Color
	Notice        tcell.Color
}

func ColorsFromTheme(theme config.Theme) Colors {
	return Colors{
		Background:    config.GetColor(theme.Background),
		Foreground:    config.GetColor(theme.Foreground),
		Borders:       config.GetColor(theme.Borders),
		Highlight:     config.GetColor(theme.Highlight),
		HighlightText: config.GetColor(theme.HighlightText),
		Played:        config.GetColor(theme.Played),
		Notice:        config.GetColor(theme.Notice),
	}
}

// Renderer draws a State onto a screen. It is used from one goroutine only.
type Renderer struct {
	screen tcell.Screen
	colors Colors

	coverURL  string
	coverView *tview.Image
}

func NewRenderer(screen tcell.Screen, colors Colors) *Renderer {
	return &Renderer{screen: screen, colors: colors}
}

// Draw repaints the whole screen. list is ignored on the welcome screen.
func (r *Renderer) Draw(state State, list Snapshot[ListItem]) {
	width, height := r.screen.Size()

	r.screen.SetStyle(tcell.StyleDefault.Background(r.colors.Background))
	r.screen.Clear()

	var root tview.Primitive
	switch s := state.(type) {
	case TrackView:
		root = r.trackLayout(s, list, height)
	default:
		root = r.welcome()
	}

	root.SetRect(0, 0, width, height)
	root.Draw(r.screen)
	r.screen.Show()
}

func (r *Renderer) welcome() tview.Primitive {
	text := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText(WelcomeText)
	text.SetTextColor(r.colors.Foreground).
		SetBackgroundColor(r.colors.Background)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(text, 1, 0, false).
		AddItem(nil, 0, 1, false)
	layout.SetBackgroundColor(r.colors.Background)
	return layout
}

func (r *Renderer) trackLayout(view TrackView, list Snapshot[ListItem], height int) tview.Primitive {
	layout := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(r.listTable(list, height), 0, listWeight, false).
		AddItem(r.trackPanel(view), 0, panelWeight, false)
	layout.SetBackgroundColor(r.colors.Background)
	return layout
}

func (r *Renderer) listTable(list Snapshot[ListItem], height int) *tview.Table {
	table := tview.NewTable().
		SetBorders(false).
		SetSelectable(false, false)

	table.SetBorder(true).
		SetTitle(fmt.Sprintf(" %s (%d) ", ListTitle, len(list.Items))).
		SetBorderColor(r.colors.Borders).
		SetTitleColor(r.colors.Foreground).
		SetBackgroundColor(r.colors.Background)

	selected, ok := list.Selected, list.HasSelection
	for i, item := range list.Items {
		cell := tview.NewTableCell(tview.Escape(item.Label)).
			SetTextColor(item.Tag).
			SetExpansion(1)

		if ok && i == selected {
			cell.SetText(SelectionSymbol + tview.Escape(item.Label)).
				SetTextColor(r.colors.HighlightText).
				SetBackgroundColor(r.colors.Highlight).
				SetAttributes(tcell.AttrBold)
		} else {
			cell.SetText("   " + tview.Escape(item.Label))
		}
		table.SetCell(i, 0, cell)
	}

	// Two border rows.
	if visible := height - 2; ok && visible > 0 && selected >= visible {
		table.SetOffset(selected-visible+1, 0)
	}
	return table
}

func (r *Renderer) trackPanel(view TrackView) tview.Primitive {
	d := view.Details

	info := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText(trackInfoText(d))
	info.SetTextColor(r.colors.Foreground).
		SetBackgroundColor(r.colors.Background)

	notice := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText(view.Notice)
	notice.SetTextColor(r.colors.Notice).
		SetBackgroundColor(r.colors.Background)

	hints := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText(r.helpText(d.HasPreview()))
	hints.SetTextColor(r.colors.Foreground).
		SetBackgroundColor(r.colors.Background)

	panel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(r.cover(d), 0, 1, false).
		AddItem(info, InfoHeight, 0, false).
		AddItem(notice, 1, 0, false).
		AddItem(hints, 1, 0, false)
	panel.SetBorder(true).
		SetTitle(" " + config.AppName + " ").
		SetBorderColor(r.colors.Borders).
		SetTitleColor(r.colors.Foreground).
		SetBackgroundColor(r.colors.Background)
	return panel
}

func trackInfoText(d track.Details) string {
	text := fmt.Sprintf("Title: %s\nDuration: %s\n\nArtist: %s",
		tview.Escape(d.Title),
		track.FormatDuration(d.Duration),
		tview.Escape(d.ArtistLine()))
	if album := d.AlbumLine(); album != "" {
		text += "\nAlbum: " + tview.Escape(album)
	}
	return text
}

func (r *Renderer) helpText(hasPreview bool) string {
	keyColor := r.colors.Highlight.String()

	preview := fmt.Sprintf("[%s]p[-] preview  [%s]s[-] stop", keyColor, keyColor)
	if !hasPreview {
		preview = "no preview"
	}
	return fmt.Sprintf("%s  [%s]y[-] search  [%s]Enter[-] next  [%s]q[-] quit",
		preview, keyColor, keyColor, keyColor)
}

// The converted cover is kept while the same image is on screen.
func (r *Renderer) cover(d track.Details) tview.Primitive {
	if d.Cover == nil {
		placeholder := tview.NewTextView().
			SetTextAlign(tview.AlignCenter).
			SetText("No cover")
		placeholder.SetTextColor(r.colors.Borders).
			SetBackgroundColor(r.colors.Background)
		return placeholder
	}

	url := d.LargestCoverURL()
	if r.coverView == nil || url == "" || url != r.coverURL {
		r.coverView = tview.NewImage().SetImage(d.Cover)
		r.coverView.SetBackgroundColor(r.colors.Background)
		r.coverURL = url
	}
	return r.coverView
}
