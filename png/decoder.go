package png

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/cocosip/go-raster-codec/codec"
)

// Color type, as per the PNG spec.
const (
	colorTypeGray = 0
	colorTypeRGB  = 2
)

const ihdrLength = 13

// header holds the decoded IHDR fields
type header struct {
	width     int
	height    int
	bitDepth  int
	colorType int
}

func (h *header) channels() int {
	if h.colorType == colorTypeGray {
		return 1
	}
	return 3
}

// parseIHDR validates and decodes the 13-byte IHDR payload
func parseIHDR(data []byte) (*header, error) {
	if len(data) != ihdrLength {
		return nil, fmt.Errorf("png: IHDR payload is %d bytes, want %d: %w",
			len(data), ihdrLength, codec.ErrUnexpectedEOF)
	}
	w := binary.BigEndian.Uint32(data[0:4])
	h := binary.BigEndian.Uint32(data[4:8])
	bitDepth := int(data[8])
	colorType := int(data[9])
	compression := data[10]
	filterMethod := data[11]
	interlace := data[12]

	if w == 0 || h == 0 || w > 1<<24 || h > 1<<24 {
		return nil, fmt.Errorf("png: bad dimensions %dx%d: %w", w, h, codec.ErrInvalidParameter)
	}
	if bitDepth != 8 {
		return nil, fmt.Errorf("png: bit depth %d: %w", bitDepth, codec.ErrUnsupported)
	}
	if colorType != colorTypeGray && colorType != colorTypeRGB {
		return nil, fmt.Errorf("png: color type %d: %w", colorType, codec.ErrUnsupported)
	}
	if compression != 0 {
		return nil, fmt.Errorf("png: compression method %d: %w", compression, codec.ErrUnsupported)
	}
	if filterMethod != 0 {
		return nil, fmt.Errorf("png: filter method %d: %w", filterMethod, codec.ErrUnsupported)
	}
	if interlace != 0 {
		return nil, fmt.Errorf("png: interlaced images: %w", codec.ErrUnsupported)
	}
	return &header{width: int(w), height: int(h), bitDepth: bitDepth, colorType: colorType}, nil
}

// readHeader returns the chunk reader positioned after IHDR together with
// the parsed header. The first chunk must be IHDR.
func readHeader(data []byte) (*chunkReader, *header, error) {
	cr, err := newChunkReader(data)
	if err != nil {
		return nil, nil, err
	}
	first, err := cr.next()
	if err != nil {
		if err == io.EOF {
			err = fmt.Errorf("png: missing IHDR: %w", codec.ErrUnexpectedEOF)
		}
		return nil, nil, err
	}
	if first.typ != "IHDR" {
		return nil, nil, fmt.Errorf("png: first chunk is %s, want IHDR: %w",
			first.typ, codec.ErrBadSignature)
	}
	hdr, err := parseIHDR(first.data)
	if err != nil {
		return nil, nil, err
	}
	return cr, hdr, nil
}

// Decode decodes a PNG byte stream into a single image
func Decode(data []byte) (*codec.Image, error) {
	cr, hdr, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	var idat bytes.Buffer
	sawIEND := false
	for {
		c, err := cr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch c.typ {
		case "IDAT":
			idat.Write(c.data)
		case "IEND":
			sawIEND = true
		default:
			// Ancillary chunks are passed over.
		}
		if sawIEND {
			break
		}
	}
	if idat.Len() == 0 {
		return nil, fmt.Errorf("png: no IDAT data: %w", codec.ErrUnexpectedEOF)
	}

	raw, err := inflate(idat.Bytes())
	if err != nil {
		return nil, err
	}

	bpp := hdr.channels()
	rowSize := hdr.width * bpp
	if len(raw) < hdr.height*(1+rowSize) {
		return nil, fmt.Errorf("png: %d bytes of pixel data, want %d: %w",
			len(raw), hdr.height*(1+rowSize), codec.ErrUnexpectedEOF)
	}

	img := codec.NewImage(hdr.width, hdr.height, bpp)
	prior := make([]byte, rowSize)
	for y := 0; y < hdr.height; y++ {
		line := raw[y*(1+rowSize) : (y+1)*(1+rowSize)]
		cur := img.Pixels[y*rowSize : (y+1)*rowSize]
		copy(cur, line[1:])
		if err := unfilterRow(line[0], cur, prior, bpp); err != nil {
			return nil, err
		}
		prior = cur
	}
	return img, nil
}

// Probe decodes the IHDR without touching pixel data
func Probe(data []byte) (*codec.Props, error) {
	_, hdr, err := readHeader(data)
	if err != nil {
		return nil, err
	}
	mode := "RGB"
	if hdr.colorType == colorTypeGray {
		mode = "L"
	}
	return &codec.Props{
		Width:      hdr.width,
		Height:     hdr.height,
		Channels:   hdr.channels(),
		BitDepth:   hdr.bitDepth,
		FrameCount: 1,
		Mode:       mode,
	}, nil
}

// inflate decompresses a zlib stream, mapping failures onto the codec
// error taxonomy
func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("png: inflate: %w", err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("png: truncated IDAT stream: %w", codec.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("png: inflate: %w", err)
	}
	return raw, nil
}
