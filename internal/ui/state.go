package ui

import "github.com/glebovdev/exospot/internal/track"

// State is what the screen shows. It is one of Welcome or TrackView.
type State interface {
	isState()
}

// Welcome is shown until the first track has been loaded.
type Welcome struct{}

// TrackView shows the current track. Notice is a one-line message for the
// user, typically a failed preview.
type TrackView struct {
	Details track.Details
	Notice  string
}

func (Welcome) isState()   {}
func (TrackView) isState() {}

// Size is the terminal size after a resize.
type Size struct {
	Width  int
	Height int
}
