package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebovdev/exospot/internal/player"
	"github.com/glebovdev/exospot/internal/stream"
)

const maxNoticeLen = 100

// failureNotice turns a preview failure into the one-line notice shown under
// the track info.
func failureNotice(err error) string {
	return fmt.Sprintf("Preview failed (%s): %s", player.Classify(err), friendlyErrorMessage(err))
}

func friendlyErrorMessage(err error) string {
	var statusErr *stream.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Permanent() {
			return fmt.Sprintf("preview unavailable (%d)", statusErr.StatusCode)
		}
		return fmt.Sprintf("server returned %d, try again", statusErr.StatusCode)
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "no such host"):
		return "unable to connect to server, check your internet connection"
	case strings.Contains(errStr, "connection refused"):
		return "connection refused by server"
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return "connection timed out"
	case strings.Contains(errStr, "network is unreachable"):
		return "network is unreachable"
	}

	if idx := strings.Index(errStr, ": dial"); idx > 0 {
		return errStr[:idx]
	}
	if len(errStr) > maxNoticeLen {
		return errStr[:maxNoticeLen] + "..."
	}
	return errStr
}
