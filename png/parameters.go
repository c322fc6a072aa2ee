package png

import (
	"fmt"

	"github.com/klauspost/compress/zlib"

	"github.com/cocosip/go-raster-codec/codec"
)

// Options contains PNG-specific encoding options
type Options struct {
	// CompressionLevel is the zlib level, zlib.NoCompression through
	// zlib.BestCompression, or zlib.DefaultCompression
	CompressionLevel int

	// Filter is the scanline filter: FilterAuto selects one per row,
	// FilterNone through FilterPaeth force a fixed filter
	Filter int
}

// DefaultOptions returns the default encoding options
func DefaultOptions() *Options {
	return &Options{
		CompressionLevel: zlib.DefaultCompression,
		Filter:           FilterAuto,
	}
}

// Validate checks if the options are valid
func (o *Options) Validate() error {
	if o.CompressionLevel < zlib.HuffmanOnly || o.CompressionLevel > zlib.BestCompression {
		return fmt.Errorf("%w: compression level %d", codec.ErrInvalidParameter, o.CompressionLevel)
	}
	if o.Filter != FilterAuto && (o.Filter < FilterNone || o.Filter >= nFilter) {
		return fmt.Errorf("%w: filter %d", codec.ErrInvalidParameter, o.Filter)
	}
	return nil
}
