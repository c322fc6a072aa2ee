package png

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zlib"

	"github.com/cocosip/go-raster-codec/codec"
)

// Encode encodes a single image as a PNG byte stream
func Encode(img *codec.Image, opts *Options) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	colorType := colorTypeGray
	if img.Channels == 3 {
		colorType = colorTypeRGB
	}

	var ihdr [ihdrLength]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(img.Width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(img.Height))
	ihdr[8] = 8               // bit depth
	ihdr[9] = byte(colorType) // color type
	// compression, filter method and interlace stay zero

	idat, err := deflate(filterImage(img, opts.Filter), opts.CompressionLevel)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(signature)
	writeChunk(&out, "IHDR", ihdr[:])
	writeChunk(&out, "IDAT", idat)
	writeChunk(&out, "IEND", nil)
	return out.Bytes(), nil
}

// filterImage produces the pre-compression scanline stream: each row is
// its filter byte followed by the filtered pixel bytes.
func filterImage(img *codec.Image, filter int) []byte {
	bpp := img.Channels
	rowSize := img.Width * bpp
	out := make([]byte, img.Height*(1+rowSize))
	prior := make([]byte, rowSize)
	scratch := make([]byte, rowSize)
	for y := 0; y < img.Height; y++ {
		cur := img.Pixels[y*rowSize : (y+1)*rowSize]
		line := out[y*(1+rowSize) : (y+1)*(1+rowSize)]
		ft := byte(filter)
		if filter == FilterAuto {
			ft = chooseFilter(scratch, cur, prior, bpp)
		}
		line[0] = ft
		filterRow(ft, line[1:], cur, prior, bpp)
		prior = cur
	}
	return out
}

// deflate compresses the scanline stream with zlib
func deflate(raw []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("png: deflate: %w", err)
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("png: deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("png: deflate: %w", err)
	}
	return buf.Bytes(), nil
}
