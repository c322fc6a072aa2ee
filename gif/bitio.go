package gif

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cocosip/go-raster-codec/codec"
)

// bitReader assembles LZW codes least-significant-bit first from a GIF
// sub-block sequence: each sub-block is a 1-byte length (1..255) followed
// by that many data bytes, and a zero length terminates the sequence.
// The sub-block structure is consumed transparently to the caller.
type bitReader struct {
	data     []byte
	off      int
	blockRem int // unread bytes in the current sub-block
	bitBuf   uint32
	bitCount uint
	done     bool // terminator seen
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

// readCode returns the next width bits. io.EOF is reported only when the
// sequence ended cleanly on a byte boundary; running out of bytes with a
// partial code pending is a truncation error.
func (r *bitReader) readCode(width uint) (uint16, error) {
	for r.bitCount < width {
		b, err := r.nextByte()
		if err != nil {
			if err == io.EOF && r.bitCount == 0 {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("gif: bit stream exhausted mid-code: %w", codec.ErrUnexpectedEOF)
		}
		r.bitBuf |= uint32(b) << r.bitCount
		r.bitCount += 8
	}
	code := uint16(r.bitBuf & (1<<width - 1))
	r.bitBuf >>= width
	r.bitCount -= width
	return code, nil
}

func (r *bitReader) nextByte() (byte, error) {
	for r.blockRem == 0 {
		if r.done {
			return 0, io.EOF
		}
		if r.off >= len(r.data) {
			return 0, fmt.Errorf("gif: missing sub-block terminator: %w", codec.ErrUnexpectedEOF)
		}
		n := int(r.data[r.off])
		r.off++
		if n == 0 {
			r.done = true
			return 0, io.EOF
		}
		if r.off+n > len(r.data) {
			return 0, fmt.Errorf("gif: truncated sub-block: %w", codec.ErrUnexpectedEOF)
		}
		r.blockRem = n
	}
	b := r.data[r.off]
	r.off++
	r.blockRem--
	return b, nil
}

// skipToEnd consumes any unread sub-blocks through the terminator and
// returns the total number of source bytes consumed. Decoding stops at
// the end-of-information code, which may leave trailing blocks unread.
func (r *bitReader) skipToEnd() (int, error) {
	r.off += r.blockRem
	r.blockRem = 0
	for !r.done {
		if r.off >= len(r.data) {
			return 0, fmt.Errorf("gif: missing sub-block terminator: %w", codec.ErrUnexpectedEOF)
		}
		n := int(r.data[r.off])
		r.off++
		if n == 0 {
			r.done = true
			break
		}
		if r.off+n > len(r.data) {
			return 0, fmt.Errorf("gif: truncated sub-block: %w", codec.ErrUnexpectedEOF)
		}
		r.off += n
	}
	return r.off, nil
}

// bitWriter is the inverse of bitReader: it buffers codes
// least-significant-bit first and flushes completed bytes into sub-blocks
// of at most 255 bytes.
type bitWriter struct {
	out      *bytes.Buffer
	block    [255]byte
	blockLen int
	bitBuf   uint32
	bitCount uint
}

func newBitWriter(out *bytes.Buffer) *bitWriter {
	return &bitWriter{out: out}
}

func (w *bitWriter) writeCode(code uint16, width uint) {
	w.bitBuf |= uint32(code) << w.bitCount
	w.bitCount += width
	for w.bitCount >= 8 {
		w.appendByte(byte(w.bitBuf))
		w.bitBuf >>= 8
		w.bitCount -= 8
	}
}

func (w *bitWriter) appendByte(b byte) {
	w.block[w.blockLen] = b
	w.blockLen++
	if w.blockLen == len(w.block) {
		w.flushBlock()
	}
}

func (w *bitWriter) flushBlock() {
	if w.blockLen == 0 {
		return
	}
	w.out.WriteByte(byte(w.blockLen))
	w.out.Write(w.block[:w.blockLen])
	w.blockLen = 0
}

// finish pads the final partial byte with zero bits, flushes the last
// sub-block and writes the terminator
func (w *bitWriter) finish() {
	if w.bitCount > 0 {
		w.appendByte(byte(w.bitBuf))
		w.bitBuf = 0
		w.bitCount = 0
	}
	w.flushBlock()
	w.out.WriteByte(0)
}
