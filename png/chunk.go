package png

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/cocosip/go-raster-codec/codec"
)

// PNG signature, as per the PNG spec.
var signature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// chunk is one typed record of a PNG stream
type chunk struct {
	typ  string
	data []byte
}

// chunkReader walks the chunk stream of an in-memory PNG file.
// Iteration ends after IEND (inclusive) or at the end of the buffer.
type chunkReader struct {
	data []byte
	off  int
	done bool
}

// newChunkReader validates the signature and positions the reader on the
// first chunk
func newChunkReader(data []byte) (*chunkReader, error) {
	if len(data) < len(signature) || !bytes.Equal(data[:len(signature)], signature) {
		return nil, fmt.Errorf("png: %w", codec.ErrBadSignature)
	}
	return &chunkReader{data: data, off: len(signature)}, nil
}

// next returns the following chunk, verifying its CRC32 against the
// type and payload. Returns io.EOF once the stream is exhausted.
func (r *chunkReader) next() (*chunk, error) {
	if r.done || r.off == len(r.data) {
		return nil, io.EOF
	}
	if r.off+8 > len(r.data) {
		return nil, fmt.Errorf("png: truncated chunk header: %w", codec.ErrUnexpectedEOF)
	}
	length := binary.BigEndian.Uint32(r.data[r.off : r.off+4])
	typ := string(r.data[r.off+4 : r.off+8])
	r.off += 8

	if typ == "IEND" {
		// A nonzero IEND length is informational only; nothing follows
		// the trailer that we would want to read.
		r.done = true
		if length != 0 {
			codec.Logger().Debug("png: ignoring nonzero IEND length", "length", length)
			return &chunk{typ: typ}, nil
		}
	}

	if length > uint32(len(r.data)-r.off) {
		return nil, fmt.Errorf("png: chunk %s declares %d bytes beyond end of stream: %w",
			typ, length, codec.ErrUnexpectedEOF)
	}
	data := r.data[r.off : r.off+int(length)]
	r.off += int(length)

	if r.off+4 > len(r.data) {
		return nil, fmt.Errorf("png: truncated chunk crc: %w", codec.ErrUnexpectedEOF)
	}
	want := binary.BigEndian.Uint32(r.data[r.off : r.off+4])
	r.off += 4

	got := crc32.Update(crc32.ChecksumIEEE([]byte(typ)), crc32.IEEETable, data)
	if got != want {
		return nil, fmt.Errorf("png: chunk %s: %w", typ, codec.ErrCRCMismatch)
	}

	codec.Logger().Debug("png: chunk", "type", typ, "length", length)
	return &chunk{typ: typ, data: data}, nil
}

// writeChunk appends one chunk: big-endian length, type, payload and the
// CRC32 of type||payload
func writeChunk(w *bytes.Buffer, typ string, data []byte) {
	var scratch [4]byte
	binary.BigEndian.PutUint32(scratch[:], uint32(len(data)))
	w.Write(scratch[:])
	w.WriteString(typ)
	w.Write(data)
	crc := crc32.Update(crc32.ChecksumIEEE([]byte(typ)), crc32.IEEETable, data)
	binary.BigEndian.PutUint32(scratch[:], crc)
	w.Write(scratch[:])
}
