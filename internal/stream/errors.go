package stream

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotSeekable is returned by Reader.Seek; preview streams are forward-only.
var ErrNotSeekable = errors.New("stream is not seekable")

// FetchError reports a failure to start or continue an HTTP fetch.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusError is a non-200 response from the preview server.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("stream returned status %d: %s", e.StatusCode, e.Status)
}

// Permanent reports whether asking again cannot help.
func (e *StatusError) Permanent() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusGone:
		return true
	}
	return false
}
