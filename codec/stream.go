package codec

// FrameReader yields decoded frames one at a time, in stream order.
// Next returns io.EOF after the final frame.
type FrameReader interface {
	Next() (*Image, error)
}

// StreamDecoder is implemented by codecs that can decode frames lazily,
// holding only one frame in memory at a time. Callers type-assert a
// Codec to StreamDecoder and fall back to Decode when unavailable.
type StreamDecoder interface {
	DecodeStream(data []byte) (FrameReader, error)
}
