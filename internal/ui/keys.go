package ui

import "github.com/gdamore/tcell/v2"

// Action is what a key press asks the track loop to do.
type Action int

const (
	ActionNone Action = iota
	ActionAdvance
	ActionPreview
	ActionStop
	ActionOpenExternal
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionAdvance:
		return "advance"
	case ActionPreview:
		return "preview"
	case ActionStop:
		return "stop"
	case ActionOpenExternal:
		return "open"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

func keyAction(event *tcell.EventKey) Action {
	switch event.Key() {
	case tcell.KeyEnter:
		return ActionAdvance
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyRune:
		switch event.Rune() {
		case 'p', 'P', ' ':
			return ActionPreview
		case 's', 'S':
			return ActionStop
		case 'y', 'Y':
			return ActionOpenExternal
		case 'q', 'Q':
			return ActionQuit
		}
	}
	return ActionNone
}
