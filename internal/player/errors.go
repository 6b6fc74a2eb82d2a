package player

import (
	"errors"

	"github.com/glebovdev/exospot/internal/decode"
	"github.com/glebovdev/exospot/internal/stream"
)

// FailureKind groups preview failures for logging and display.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureFetch
	FailureProbe
	FailureDecode
	FailureDevice
)

func (k FailureKind) String() string {
	switch k {
	case FailureFetch:
		return "fetch"
	case FailureProbe:
		return "probe"
	case FailureDecode:
		return "decode"
	case FailureDevice:
		return "device"
	default:
		return "unknown"
	}
}

// Classify picks the outermost stage that failed. A probe that failed
// because its read failed counts as a fetch failure.
func Classify(err error) FailureKind {
	var (
		devErr    *DeviceError
		decodeErr *decode.DecodeError
		fetchErr  *stream.FetchError
		probeErr  *decode.ProbeError
	)

	switch {
	case err == nil:
		return FailureUnknown
	case errors.As(err, &devErr):
		return FailureDevice
	case errors.As(err, &decodeErr):
		return FailureDecode
	case errors.As(err, &fetchErr):
		return FailureFetch
	case errors.As(err, &probeErr):
		return FailureProbe
	default:
		return FailureUnknown
	}
}
