// Package gif implements a GIF89a decoder and a grayscale GIF encoder.
// Frames are LZW-compressed palette indices; decoding maps them through
// the active (global or local) color table, and a table whose entries are
// all gray collapses output to single-channel images.
package gif

import (
	"bytes"
	"fmt"

	"github.com/cocosip/go-raster-codec/codec"
)

// Codec implements the codec.Codec interface for GIF
type Codec struct{}

// NewCodec creates a new GIF codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode encodes one or more frames as an animated GIF
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	var opts *Options
	if params.Options != nil {
		o, ok := params.Options.(*Options)
		if !ok {
			return nil, fmt.Errorf("gif: options are %T: %w", params.Options, codec.ErrInvalidParameter)
		}
		opts = o
	}
	return Encode(params.Frames, opts)
}

// Decode decodes every frame of a GIF stream
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	frames, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{Frames: frames}, nil
}

// DecodeStream returns a frame reader that decodes one frame at a time
func (c *Codec) DecodeStream(data []byte) (codec.FrameReader, error) {
	return NewReader(data)
}

// Probe reads the stream structure without decoding pixel data
func (c *Codec) Probe(data []byte) (*codec.Props, error) {
	return Probe(data)
}

// Sniff reports whether data starts with a GIF87a or GIF89a magic
func (c *Codec) Sniff(data []byte) bool {
	return len(data) >= 6 &&
		(bytes.Equal(data[:6], magic87) || bytes.Equal(data[:6], magic89))
}

// Name returns the format name
func (c *Codec) Name() string {
	return "gif"
}

// Extensions returns the file extensions handled by this codec
func (c *Codec) Extensions() []string {
	return []string{".gif"}
}

// init automatically registers the codec
func init() {
	codec.Register(NewCodec())
}
