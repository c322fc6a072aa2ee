package gif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cocosip/go-raster-codec/codec"
)

// Section indicators and extension labels, as per the GIF89a spec.
const (
	sExtension       = 0x21
	sImageDescriptor = 0x2C
	sTrailer         = 0x3B

	eGraphicControl = 0xF9
)

var (
	magic87 = []byte("GIF87a")
	magic89 = []byte("GIF89a")
)

// colorTable is a palette of RGB triples, 2..256 entries
type colorTable [][3]byte

// grayscale reports whether every entry has R == G == B. Frames decoded
// through such a table collapse to single-channel images.
func (t colorTable) grayscale() bool {
	for _, e := range t {
		if e[0] != e[1] || e[1] != e[2] {
			return false
		}
	}
	return true
}

// Reader decodes the frames of a GIF stream one at a time, in stream
// order. It holds no more than one frame in memory.
type Reader struct {
	// Width and Height are the logical screen dimensions
	Width  int
	Height int

	// Delay is the graphic-control delay of the most recently decoded
	// frame, in hundredths of a second
	Delay int

	// Transparent is the transparent color index of the most recently
	// decoded frame, or -1 when the frame has none
	Transparent int

	data            []byte
	off             int
	globalTable     colorTable
	pendingGCE      bool
	delayNext       int
	transparentNext int
	done            bool
}

// NewReader parses the GIF header, logical screen descriptor and global
// color table, leaving the reader positioned on the first block
func NewReader(data []byte) (*Reader, error) {
	if len(data) < 6 || (!bytes.Equal(data[:6], magic87) && !bytes.Equal(data[:6], magic89)) {
		return nil, fmt.Errorf("gif: %w", codec.ErrBadSignature)
	}
	if len(data) < 13 {
		return nil, fmt.Errorf("gif: truncated screen descriptor: %w", codec.ErrUnexpectedEOF)
	}

	r := &Reader{
		Width:       int(binary.LittleEndian.Uint16(data[6:8])),
		Height:      int(binary.LittleEndian.Uint16(data[8:10])),
		Transparent: -1,
		data:        data,
		off:         13,
	}
	packed := data[10]
	// data[11] is the background color index, data[12] the aspect ratio;
	// neither affects decoding.
	if packed&0x80 != 0 {
		size := 1 << ((packed & 0x07) + 1)
		table, err := r.readColorTable(size)
		if err != nil {
			return nil, err
		}
		r.globalTable = table
	}
	return r, nil
}

func (r *Reader) readColorTable(size int) (colorTable, error) {
	if r.off+3*size > len(r.data) {
		return nil, fmt.Errorf("gif: truncated color table: %w", codec.ErrUnexpectedEOF)
	}
	table := make(colorTable, size)
	for i := range table {
		copy(table[i][:], r.data[r.off+3*i:r.off+3*i+3])
	}
	r.off += 3 * size
	return table, nil
}

// Next decodes and returns the next frame, or io.EOF after the trailer
func (r *Reader) Next() (*codec.Image, error) {
	if r.done {
		return nil, io.EOF
	}
	for {
		if r.off >= len(r.data) {
			return nil, fmt.Errorf("gif: missing trailer: %w", codec.ErrUnexpectedEOF)
		}
		introducer := r.data[r.off]
		r.off++
		switch introducer {
		case sTrailer:
			r.done = true
			return nil, io.EOF
		case sExtension:
			if err := r.readExtension(); err != nil {
				return nil, err
			}
		case sImageDescriptor:
			return r.readFrame()
		default:
			return nil, fmt.Errorf("gif: unknown block introducer 0x%02x: %w",
				introducer, codec.ErrUnsupported)
		}
	}
}

// readExtension consumes one extension block. Graphic control delays and
// transparency indices are retained for the following frame; all other
// extensions are skipped.
func (r *Reader) readExtension() error {
	if r.off >= len(r.data) {
		return fmt.Errorf("gif: truncated extension: %w", codec.ErrUnexpectedEOF)
	}
	label := r.data[r.off]
	r.off++

	if label == eGraphicControl && r.off < len(r.data) && r.data[r.off] == 4 {
		if r.off+5 > len(r.data) {
			return fmt.Errorf("gif: truncated graphic control: %w", codec.ErrUnexpectedEOF)
		}
		// block size, packed, delay lo, delay hi, transparent index
		packed := r.data[r.off+1]
		r.delayNext = int(binary.LittleEndian.Uint16(r.data[r.off+2 : r.off+4]))
		r.transparentNext = -1
		if packed&0x01 != 0 {
			r.transparentNext = int(r.data[r.off+4])
		}
		r.pendingGCE = true
	}
	return r.skipSubBlocks()
}

// skipSubBlocks advances past length-prefixed sub-blocks up to and
// including the zero terminator
func (r *Reader) skipSubBlocks() error {
	for {
		if r.off >= len(r.data) {
			return fmt.Errorf("gif: truncated sub-blocks: %w", codec.ErrUnexpectedEOF)
		}
		n := int(r.data[r.off])
		r.off++
		if n == 0 {
			return nil
		}
		if r.off+n > len(r.data) {
			return fmt.Errorf("gif: truncated sub-block: %w", codec.ErrUnexpectedEOF)
		}
		r.off += n
	}
}

// readFrame decodes the image following an image descriptor introducer
func (r *Reader) readFrame() (*codec.Image, error) {
	if r.off+9 > len(r.data) {
		return nil, fmt.Errorf("gif: truncated image descriptor: %w", codec.ErrUnexpectedEOF)
	}
	desc := r.data[r.off : r.off+9]
	r.off += 9
	width := int(binary.LittleEndian.Uint16(desc[4:6]))
	height := int(binary.LittleEndian.Uint16(desc[6:8]))
	packed := desc[8]

	if packed&0x40 != 0 {
		return nil, fmt.Errorf("gif: interlaced frames: %w", codec.ErrUnsupported)
	}

	table := r.globalTable
	if packed&0x80 != 0 {
		// A local table shadows the global one for this frame only
		local, err := r.readColorTable(1 << ((packed & 0x07) + 1))
		if err != nil {
			return nil, err
		}
		table = local
	}
	if table == nil {
		return nil, fmt.Errorf("gif: frame without color table: %w", codec.ErrUnsupported)
	}

	if r.off >= len(r.data) {
		return nil, fmt.Errorf("gif: missing lzw code size: %w", codec.ErrUnexpectedEOF)
	}
	minCodeSize := int(r.data[r.off])
	r.off++

	indices, consumed, err := lzwDecode(r.data[r.off:], minCodeSize)
	if err != nil {
		return nil, err
	}
	r.off += consumed

	if len(indices) < width*height {
		return nil, fmt.Errorf("gif: %d pixels decoded, want %d: %w",
			len(indices), width*height, codec.ErrUnexpectedEOF)
	}
	indices = indices[:width*height]

	if r.pendingGCE {
		r.Delay = r.delayNext
		r.Transparent = r.transparentNext
		r.pendingGCE = false
	} else {
		r.Delay = 0
		r.Transparent = -1
	}

	var img *codec.Image
	if table.grayscale() {
		img = codec.NewImage(width, height, 1)
		for i, idx := range indices {
			if int(idx) >= len(table) {
				return nil, fmt.Errorf("gif: pixel index %d outside %d-entry table: %w",
					idx, len(table), codec.ErrInvalidParameter)
			}
			img.Pixels[i] = table[idx][0]
		}
	} else {
		img = codec.NewImage(width, height, 3)
		for i, idx := range indices {
			if int(idx) >= len(table) {
				return nil, fmt.Errorf("gif: pixel index %d outside %d-entry table: %w",
					idx, len(table), codec.ErrInvalidParameter)
			}
			copy(img.Pixels[3*i:], table[idx][:])
		}
	}
	codec.Logger().Debug("gif: frame decoded", "width", width, "height", height,
		"channels", img.Channels, "delay", r.Delay)
	return img, nil
}

// Decode decodes every frame of a GIF stream eagerly
func Decode(data []byte) ([]*codec.Image, error) {
	r, err := NewReader(data)
	if err != nil {
		return nil, err
	}
	var frames []*codec.Image
	for {
		img, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, img)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("gif: no frames: %w", codec.ErrUnexpectedEOF)
	}
	return frames, nil
}

// Probe walks the block structure counting frames without decoding any
// pixel data
func Probe(data []byte) (*codec.Props, error) {
	r, err := NewReader(data)
	if err != nil {
		return nil, err
	}
	channels := 3
	if r.globalTable == nil || r.globalTable.grayscale() {
		channels = 1
	}

	frames := 0
	for !r.done {
		if r.off >= len(r.data) {
			return nil, fmt.Errorf("gif: missing trailer: %w", codec.ErrUnexpectedEOF)
		}
		introducer := r.data[r.off]
		r.off++
		switch introducer {
		case sTrailer:
			r.done = true
		case sExtension:
			if r.off >= len(r.data) {
				return nil, fmt.Errorf("gif: truncated extension: %w", codec.ErrUnexpectedEOF)
			}
			r.off++ // label
			if err := r.skipSubBlocks(); err != nil {
				return nil, err
			}
		case sImageDescriptor:
			if r.off+9 > len(r.data) {
				return nil, fmt.Errorf("gif: truncated image descriptor: %w", codec.ErrUnexpectedEOF)
			}
			packed := r.data[r.off+8]
			r.off += 9
			if packed&0x80 != 0 {
				if _, err := r.readColorTable(1 << ((packed & 0x07) + 1)); err != nil {
					return nil, err
				}
			}
			if r.off >= len(r.data) {
				return nil, fmt.Errorf("gif: missing lzw code size: %w", codec.ErrUnexpectedEOF)
			}
			r.off++ // minimum code size
			if err := r.skipSubBlocks(); err != nil {
				return nil, err
			}
			frames++
		default:
			return nil, fmt.Errorf("gif: unknown block introducer 0x%02x: %w",
				introducer, codec.ErrUnsupported)
		}
	}
	return &codec.Props{
		Width:      r.Width,
		Height:     r.Height,
		Channels:   channels,
		BitDepth:   8,
		FrameCount: frames,
		Mode:       "P",
	}, nil
}
