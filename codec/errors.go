package codec

import "errors"

var (
	// ErrCodecNotFound is returned when a codec is not found in the registry
	ErrCodecNotFound = errors.New("codec not found")

	// ErrInvalidParameter is returned when encoding/decoding parameters are invalid
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrBadSignature is returned when the input does not start with the
	// format's magic bytes
	ErrBadSignature = errors.New("bad signature")

	// ErrCRCMismatch is returned when a chunk checksum does not match its payload
	ErrCRCMismatch = errors.New("crc mismatch")

	// ErrUnexpectedEOF is returned when a chunk, sub-block or bit stream
	// ends before its declared length
	ErrUnexpectedEOF = errors.New("unexpected end of data")

	// ErrInvalidFilterType is returned for a scanline filter byte outside 0..4
	ErrInvalidFilterType = errors.New("invalid filter type")

	// ErrInvalidLZWCode is returned for an LZW code beyond the next assignable code
	ErrInvalidLZWCode = errors.New("invalid lzw code")

	// ErrUnsupported is returned when the stream uses a valid but
	// unimplemented feature (bit depth, color type, interlace)
	ErrUnsupported = errors.New("unsupported format feature")

	// ErrSequenceNotSupported is returned when writing multiple frames to a
	// single-frame format
	ErrSequenceNotSupported = errors.New("frame sequence not supported")
)
