package decode

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/glebovdev/exospot/internal/testutil"
)

type trackingCloser struct {
	io.Reader
	closed int
}

func (c *trackingCloser) Close() error {
	c.closed++
	return nil
}

// failingReader yields data and then a fixed error instead of EOF.
type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func drain(t *testing.T, s *FrameSource) (frames, samples int) {
	t.Helper()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case f, ok := <-s.Frames():
			if !ok {
				return frames, samples
			}
			frames++
			samples += len(f)
		case <-timeout:
			t.Fatal("frame sequence did not end")
		}
	}
}

func TestProbeDecodesSilentStream(t *testing.T) {
	src, err := Probe(io.NopCloser(bytes.NewReader(testutil.SilentMP3(40))), "mp3")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	defer src.Close()

	format := src.Format()
	if int(format.SampleRate) != testutil.SampleRate {
		t.Errorf("SampleRate = %d, want %d", format.SampleRate, testutil.SampleRate)
	}
	if format.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", format.NumChannels)
	}

	var samples int
	for f := range src.Frames() {
		if len(f) > FrameSize {
			t.Fatalf("frame of %d samples exceeds FrameSize", len(f))
		}
		for _, s := range f {
			if math.Abs(s[0]) > 1e-3 || math.Abs(s[1]) > 1e-3 {
				t.Fatalf("silent stream produced sample %v", s)
			}
		}
		samples += len(f)
	}

	if samples == 0 {
		t.Fatal("no samples decoded")
	}
	if int64(samples) != src.Decoded() {
		t.Errorf("Decoded() = %d, want %d", src.Decoded(), samples)
	}
	if src.Err() != nil {
		t.Errorf("Err() = %v, want nil for a clean end", src.Err())
	}
}

func TestProbeAcceptsHints(t *testing.T) {
	for _, hint := range []string{"", "mp3", "MP3", " mp3 "} {
		t.Run(hint, func(t *testing.T) {
			src, err := Probe(io.NopCloser(bytes.NewReader(testutil.SilentMP3(8))), hint)
			if err != nil {
				t.Fatalf("Probe(hint %q) error = %v", hint, err)
			}
			src.Close()
		})
	}
}

func TestProbeSkipsID3Tag(t *testing.T) {
	data := testutil.WithID3(testutil.SilentMP3(16))

	src, err := Probe(io.NopCloser(bytes.NewReader(data)), "")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	defer src.Close()

	if _, samples := drain(t, src); samples == 0 {
		t.Error("no samples decoded after ID3 tag")
	}
}

func TestProbeErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		hint   string
		expect error
	}{
		{"unsupported hint", testutil.SilentMP3(4), "aac", ErrUnsupportedCodec},
		{"wav header", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), "", ErrUnrecognizedFormat},
		{"html error page", []byte("<html><body>nope</body></html>"), "mp3", ErrUnrecognizedFormat},
		{"empty body", nil, "", ErrUnrecognizedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := &trackingCloser{Reader: bytes.NewReader(tt.data)}

			src, err := Probe(rc, tt.hint)
			if src != nil {
				src.Close()
				t.Fatal("Probe() returned a source on failure")
			}

			var probeErr *ProbeError
			if !errors.As(err, &probeErr) {
				t.Fatalf("Probe() error = %v, want *ProbeError", err)
			}
			if !errors.Is(err, tt.expect) {
				t.Errorf("Probe() error = %v, want %v", err, tt.expect)
			}
			if rc.closed == 0 {
				t.Error("Probe() must close the reader on failure")
			}
		})
	}
}

func TestTruncatedStreamEnds(t *testing.T) {
	data := testutil.SilentMP3(12)
	data = data[:len(data)-testutil.FrameBytes/2]

	src, err := Probe(io.NopCloser(bytes.NewReader(data)), "mp3")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	defer src.Close()

	if _, samples := drain(t, src); samples == 0 {
		t.Error("frames before the truncation should still be delivered")
	}
}

func TestMidStreamErrorBecomesDecodeError(t *testing.T) {
	boom := errors.New("connection reset by peer")
	r := &failingReader{data: testutil.SilentMP3(12), err: boom}

	src, err := Probe(io.NopCloser(r), "mp3")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	defer src.Close()

	if _, samples := drain(t, src); samples == 0 {
		t.Error("frames decoded before the error should be delivered")
	}

	var decodeErr *DecodeError
	if !errors.As(src.Err(), &decodeErr) {
		t.Fatalf("Err() = %v, want *DecodeError", src.Err())
	}
}

func TestCloseStopsWorker(t *testing.T) {
	rc := &trackingCloser{Reader: bytes.NewReader(testutil.SilentMP3(400))}

	src, err := Probe(rc, "mp3")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		src.Close()
		src.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close() did not return")
	}

	if rc.closed == 0 {
		t.Error("Close() must release the input")
	}

	for range src.Frames() {
	}
}

func TestLooksLikeMP3(t *testing.T) {
	tests := []struct {
		name     string
		head     []byte
		expected bool
	}{
		{"id3", []byte("ID3"), true},
		{"frame sync", []byte{0xFF, 0xFB, 0x90}, true},
		{"mpeg2 sync", []byte{0xFF, 0xF3, 0x40}, true},
		{"partial sync", []byte{0xFF, 0x1B, 0x00}, false},
		{"ogg", []byte("Ogg"), false},
		{"short", []byte{0xFF}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksLikeMP3(tt.head); got != tt.expected {
				t.Errorf("looksLikeMP3(%v) = %v, want %v", tt.head, got, tt.expected)
			}
		})
	}
}
