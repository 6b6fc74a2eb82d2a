package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestKeyAction(t *testing.T) {
	tests := []struct {
		name     string
		key      tcell.Key
		r        rune
		expected Action
	}{
		{"enter advances", tcell.KeyEnter, 0, ActionAdvance},
		{"p previews", tcell.KeyRune, 'p', ActionPreview},
		{"space previews", tcell.KeyRune, ' ', ActionPreview},
		{"s stops", tcell.KeyRune, 's', ActionStop},
		{"y opens", tcell.KeyRune, 'y', ActionOpenExternal},
		{"q quits", tcell.KeyRune, 'q', ActionQuit},
		{"escape quits", tcell.KeyEscape, 0, ActionQuit},
		{"ctrl-c quits", tcell.KeyCtrlC, 0, ActionQuit},
		{"other rune", tcell.KeyRune, 'x', ActionNone},
		{"arrow", tcell.KeyDown, 0, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := tcell.NewEventKey(tt.key, tt.r, tcell.ModNone)
			if got := keyAction(event); got != tt.expected {
				t.Errorf("keyAction() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestActionString(t *testing.T) {
	if ActionOpenExternal.String() != "open" {
		t.Errorf("String() = %q, want open", ActionOpenExternal.String())
	}
	if Action(99).String() != "none" {
		t.Errorf("unknown action should print as none")
	}
}
