// Package testutil builds audio fixtures for tests.
package testutil

// MPEG-1 Layer III, 128 kbit/s, 44100 Hz, mono, no CRC, no padding.
var frameHeader = [4]byte{0xFF, 0xFB, 0x90, 0xC0}

const (
	// FrameBytes is the size of one fixture frame: 144 * 128000 / 44100.
	FrameBytes = 417
	// SamplesPerFrame is the PCM frame count a Layer III frame decodes to.
	SamplesPerFrame = 1152
	// SampleRate of the fixture stream.
	SampleRate = 44100
)

// SilentMP3 returns a headerless MP3 stream of n silent frames. The side
// information and main data are all zero, so every granule decodes to silence.
func SilentMP3(n int) []byte {
	out := make([]byte, 0, n*FrameBytes)
	for i := 0; i < n; i++ {
		frame := make([]byte, FrameBytes)
		copy(frame, frameHeader[:])
		out = append(out, frame...)
	}
	return out
}

// WithID3 prefixes data with an empty ID3v2.4 tag.
func WithID3(data []byte) []byte {
	tag := []byte{'I', 'D', '3', 4, 0, 0, 0, 0, 0, 0}
	return append(tag, data...)
}
