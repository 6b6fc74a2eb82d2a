package decode

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedCodec means the codec hint names a format no decoder handles.
	ErrUnsupportedCodec = errors.New("unsupported codec")
	// ErrUnrecognizedFormat means the stream header matches no known container.
	ErrUnrecognizedFormat = errors.New("unrecognized format")
)

// ProbeError is a failure to identify the stream or build its decoder.
type ProbeError struct {
	Hint string
	Err  error
}

func (e *ProbeError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("probe: %v", e.Err)
	}
	return fmt.Sprintf("probe (hint %q): %v", e.Hint, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// DecodeError ends a frame sequence that had already started.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
