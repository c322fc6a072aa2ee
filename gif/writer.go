package gif

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-raster-codec/codec"
)

// Encode encodes one or more frames as a GIF89a stream. Frames are
// written through a 256-entry grayscale global color table; RGB frames
// are reduced to luminance first. All frames must share one geometry.
func Encode(frames []*codec.Image, opts *Options) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("gif: no frames: %w", codec.ErrInvalidParameter)
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var width, height int
	gray := make([]*codec.Image, len(frames))
	for i, f := range frames {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if i == 0 {
			// Screen and image descriptors carry u16 dimensions
			if f.Width > 0xFFFF || f.Height > 0xFFFF {
				return nil, fmt.Errorf("gif: %dx%d exceeds the 65535 descriptor limit: %w",
					f.Width, f.Height, codec.ErrInvalidParameter)
			}
			width, height = f.Width, f.Height
		} else if f.Width != width || f.Height != height {
			return nil, fmt.Errorf("gif: frame %d is %dx%d, want %dx%d: %w",
				i, f.Width, f.Height, width, height, codec.ErrInvalidParameter)
		}
		gray[i] = f.Gray()
	}

	var out bytes.Buffer
	out.Write(magic89)

	// Logical screen descriptor: global table present, 8-bit color
	// resolution, 256-entry table
	var lsd [7]byte
	binary.LittleEndian.PutUint16(lsd[0:2], uint16(width))
	binary.LittleEndian.PutUint16(lsd[2:4], uint16(height))
	lsd[4] = 0x80 | 0x70 | 0x07
	out.Write(lsd[:])

	// Grayscale global color table: index i maps to (i, i, i)
	for i := 0; i < 256; i++ {
		out.Write([]byte{byte(i), byte(i), byte(i)})
	}

	if len(frames) > 1 {
		writeLoopExtension(&out, opts.Loop)
	}

	for _, f := range gray {
		writeGraphicControl(&out, opts.Delay)

		var desc [10]byte
		desc[0] = sImageDescriptor
		binary.LittleEndian.PutUint16(desc[5:7], uint16(width))
		binary.LittleEndian.PutUint16(desc[7:9], uint16(height))
		out.Write(desc[:])

		out.WriteByte(8) // LZW minimum code size for 8-bit indices
		out.Write(lzwEncode(f.Pixels, 8))
	}

	out.WriteByte(sTrailer)
	return out.Bytes(), nil
}

// writeLoopExtension writes the NETSCAPE2.0 application extension;
// loop 0 means repeat forever
func writeLoopExtension(out *bytes.Buffer, loop int) {
	out.Write([]byte{sExtension, 0xFF, 0x0B})
	out.WriteString("NETSCAPE2.0")
	out.Write([]byte{3, 1})
	var n [2]byte
	binary.LittleEndian.PutUint16(n[:], uint16(loop))
	out.Write(n[:])
	out.WriteByte(0)
}

// writeGraphicControl writes a graphic control extension carrying the
// frame delay in hundredths of a second
func writeGraphicControl(out *bytes.Buffer, delay int) {
	var gce [8]byte
	gce[0] = sExtension
	gce[1] = eGraphicControl
	gce[2] = 4
	binary.LittleEndian.PutUint16(gce[4:6], uint16(delay))
	out.Write(gce[:])
}
