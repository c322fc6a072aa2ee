package gif_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/cocosip/go-raster-codec/codec"
	"github.com/cocosip/go-raster-codec/gif"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		frame *codec.Image
	}{
		{"1x1", codec.TestFrame(1, 1, 1, 1)},
		{"single pixel row", codec.TestFrame(16, 1, 1, 2)},
		{"single pixel column", codec.TestFrame(1, 16, 1, 3)},
		{"noise", codec.TestFrame(32, 24, 1, 4)},
		{"gradient", codec.TestGradient(64, 48, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := gif.Encode([]*codec.Image{tt.frame}, nil)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			frames, err := gif.Decode(data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if len(frames) != 1 {
				t.Fatalf("decoded %d frames, want 1", len(frames))
			}
			got := frames[0]
			if got.Width != tt.frame.Width || got.Height != tt.frame.Height || got.Channels != 1 {
				t.Fatalf("decoded %dx%dx%d, want %dx%dx1",
					got.Width, got.Height, got.Channels, tt.frame.Width, tt.frame.Height)
			}
			if !bytes.Equal(got.Pixels, tt.frame.Pixels) {
				t.Error("pixel data does not round trip")
			}
		})
	}
}

// Every gray level must survive the trip through the 256-entry
// grayscale color table unchanged.
func TestRoundTripAllGrayValues(t *testing.T) {
	frame := codec.NewImage(16, 16, 1)
	for i := range frame.Pixels {
		frame.Pixels[i] = byte(i)
	}
	data, err := gif.Encode([]*codec.Image{frame}, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	frames, err := gif.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(frames[0].Pixels, frame.Pixels) {
		t.Error("gray levels do not round trip")
	}
}

func TestRoundTripMultiFrame(t *testing.T) {
	src := []*codec.Image{
		codec.TestFrame(20, 10, 1, 11),
		codec.TestFrame(20, 10, 1, 22),
		codec.TestFrame(20, 10, 1, 33),
	}
	opts := &gif.Options{Delay: 12, Loop: 0}
	data, err := gif.Encode(src, opts)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	frames, err := gif.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(frames) != len(src) {
		t.Fatalf("decoded %d frames, want %d", len(frames), len(src))
	}
	for i := range src {
		if !bytes.Equal(frames[i].Pixels, src[i].Pixels) {
			t.Errorf("frame %d does not round trip", i)
		}
	}
}

func TestReaderDelay(t *testing.T) {
	src := []*codec.Image{
		codec.TestFrame(8, 8, 1, 1),
		codec.TestFrame(8, 8, 1, 2),
	}
	data, err := gif.Encode(src, &gif.Options{Delay: 25})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	r, err := gif.NewReader(data)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if r.Width != 8 || r.Height != 8 {
		t.Errorf("screen is %dx%d, want 8x8", r.Width, r.Height)
	}
	for i := 0; i < len(src); i++ {
		if _, err := r.Next(); err != nil {
			t.Fatalf("Next frame %d failed: %v", i, err)
		}
		if r.Delay != 25 {
			t.Errorf("frame %d delay = %d, want 25", i, r.Delay)
		}
		if r.Transparent != -1 {
			t.Errorf("frame %d transparent index = %d, want -1", i, r.Transparent)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next after trailer = %v, want io.EOF", err)
	}
	// io.EOF remains sticky
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("repeated Next = %v, want io.EOF", err)
	}
}

// RGB input is reduced to luminance before encoding, so the decoded
// frame is single-channel and matches Gray() of the source.
func TestRGBReducedToLuminance(t *testing.T) {
	frame := codec.TestFrame(10, 10, 3, 9)
	data, err := gif.Encode([]*codec.Image{frame}, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	frames, err := gif.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got := frames[0]
	if got.Channels != 1 {
		t.Fatalf("decoded %d channels, want 1", got.Channels)
	}
	if !bytes.Equal(got.Pixels, frame.Gray().Pixels) {
		t.Error("decoded pixels differ from source luminance")
	}
}

func TestEncodeErrors(t *testing.T) {
	valid := codec.TestFrame(4, 4, 1, 1)

	tests := []struct {
		name    string
		frames  []*codec.Image
		opts    *gif.Options
		wantErr error
	}{
		{"no frames", nil, nil, codec.ErrInvalidParameter},
		{"nil frame", []*codec.Image{nil}, nil, codec.ErrInvalidParameter},
		{"mismatched geometry", []*codec.Image{valid, codec.TestFrame(5, 4, 1, 1)},
			nil, codec.ErrInvalidParameter},
		{"negative delay", []*codec.Image{valid}, &gif.Options{Delay: -1},
			codec.ErrInvalidParameter},
		{"delay too large", []*codec.Image{valid}, &gif.Options{Delay: 0x10000},
			codec.ErrInvalidParameter},
		{"two channel frame", []*codec.Image{codec.TestFrame(4, 4, 2, 1)},
			nil, codec.ErrUnsupported},
		{"height beyond u16", []*codec.Image{codec.NewImage(1, 70000, 1)},
			nil, codec.ErrInvalidParameter},
		{"width beyond u16", []*codec.Image{codec.NewImage(0x10000, 1, 1)},
			nil, codec.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := gif.Encode(tt.frames, tt.opts); !errors.Is(err, tt.wantErr) {
				t.Errorf("Encode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// wrongOptions satisfies codec.Options but is not *gif.Options
type wrongOptions struct{}

func (wrongOptions) Validate() error { return nil }

func TestCodecOptionsType(t *testing.T) {
	c := gif.NewCodec()
	_, err := c.Encode(codec.EncodeParams{
		Frames:  []*codec.Image{codec.TestFrame(4, 4, 1, 1)},
		Options: wrongOptions{},
	})
	if !errors.Is(err, codec.ErrInvalidParameter) {
		t.Errorf("Encode() error = %v, want %v", err, codec.ErrInvalidParameter)
	}
}

func TestProbe(t *testing.T) {
	src := []*codec.Image{
		codec.TestFrame(30, 20, 1, 1),
		codec.TestFrame(30, 20, 1, 2),
		codec.TestFrame(30, 20, 1, 3),
	}
	data, err := gif.Encode(src, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	props, err := gif.Probe(data)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	want := codec.Props{Width: 30, Height: 20, Channels: 1, BitDepth: 8, FrameCount: 3, Mode: "P"}
	if *props != want {
		t.Errorf("Probe() = %+v, want %+v", *props, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	single, err := gif.Encode([]*codec.Image{codec.TestFrame(8, 8, 1, 5)}, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, codec.ErrBadSignature},
		{"bad magic", []byte("NOTAGIF89a..."), codec.ErrBadSignature},
		{"wrong version", []byte("GIF88a\x00\x00\x00\x00\x00\x00\x00"), codec.ErrBadSignature},
		{"truncated screen descriptor", []byte("GIF89a\x08\x00"), codec.ErrUnexpectedEOF},
		{"no frames", append(bytes.Clone(single[:13+768]), 0x3B), codec.ErrUnexpectedEOF},
		{"cut before trailer", single[:len(single)-1], codec.ErrUnexpectedEOF},
		{"cut inside pixel data", single[:13+768+30], codec.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := gif.Decode(tt.data); !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSniff(t *testing.T) {
	c := gif.NewCodec()
	if !c.Sniff([]byte("GIF89a trailing")) {
		t.Error("Sniff rejected GIF89a")
	}
	if !c.Sniff([]byte("GIF87a trailing")) {
		t.Error("Sniff rejected GIF87a")
	}
	if c.Sniff([]byte("GIF9")) {
		t.Error("Sniff accepted a short buffer")
	}
	if c.Sniff([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}) {
		t.Error("Sniff accepted a PNG signature")
	}
}
