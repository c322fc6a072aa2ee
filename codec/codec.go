package codec

// Codec is the universal interface for all raster image codecs
type Codec interface {
	// Encode encodes one or more frames into the codec's wire format
	Encode(params EncodeParams) ([]byte, error)

	// Decode decodes compressed data into frames
	Decode(data []byte) (*DecodeResult, error)

	// Probe reads header information without decoding pixel data
	Probe(data []byte) (*Props, error)

	// Sniff reports whether data starts with this codec's magic bytes
	Sniff(data []byte) bool

	// Name returns a short lowercase format name (e.g. "png")
	Name() string

	// Extensions returns the file extensions handled by this codec,
	// each with a leading dot
	Extensions() []string
}

// EncodeParams contains parameters for encoding
type EncodeParams struct {
	Frames  []*Image // Frames to encode, in stream order
	Options Options  // Codec-specific options
}

// Options is an interface for codec-specific encoding options
type Options interface {
	// Validate checks if the options are valid
	Validate() error
}

// DecodeResult contains the result of decoding
type DecodeResult struct {
	Frames []*Image // Decoded frames, in stream order
}

// Props describes an image stream without its pixel data
type Props struct {
	Width      int    // Image width
	Height     int    // Image height
	Channels   int    // Number of color components (1=grayscale, 3=RGB)
	BitDepth   int    // Bits per sample
	FrameCount int    // Number of frames in the stream
	Mode       string // PIL-style mode string: "L", "RGB" or "P"
}
