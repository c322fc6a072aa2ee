// Package png implements a PNG encoder and decoder for 8-bit grayscale
// and RGB images. Pixel data is carried in zlib-compressed IDAT chunks
// with per-scanline predictive filtering; every chunk CRC is verified.
package png

import (
	"bytes"
	"fmt"

	"github.com/cocosip/go-raster-codec/codec"
)

// Codec implements the codec.Codec interface for PNG
type Codec struct{}

// NewCodec creates a new PNG codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode encodes a single frame as PNG. More than one frame is rejected:
// PNG carries no frame sequence.
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	if len(params.Frames) == 0 {
		return nil, fmt.Errorf("png: no frames: %w", codec.ErrInvalidParameter)
	}
	if len(params.Frames) > 1 {
		return nil, fmt.Errorf("png: %d frames: %w", len(params.Frames), codec.ErrSequenceNotSupported)
	}

	var opts *Options
	if params.Options != nil {
		o, ok := params.Options.(*Options)
		if !ok {
			return nil, fmt.Errorf("png: options are %T: %w", params.Options, codec.ErrInvalidParameter)
		}
		opts = o
	}
	return Encode(params.Frames[0], opts)
}

// Decode decodes PNG data into a single-frame result
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{Frames: []*codec.Image{img}}, nil
}

// Probe reads the IHDR header without decoding pixel data
func (c *Codec) Probe(data []byte) (*codec.Props, error) {
	return Probe(data)
}

// Sniff reports whether data starts with the PNG signature
func (c *Codec) Sniff(data []byte) bool {
	return len(data) >= len(signature) && bytes.Equal(data[:len(signature)], signature)
}

// Name returns the format name
func (c *Codec) Name() string {
	return "png"
}

// Extensions returns the file extensions handled by this codec
func (c *Codec) Extensions() []string {
	return []string{".png"}
}

// init automatically registers the codec
func init() {
	codec.Register(NewCodec())
}
