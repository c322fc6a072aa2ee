package gif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/cocosip/go-raster-codec/codec"
)

// writeHeader emits the magic, logical screen descriptor and optional
// global color table. The table size must be a power of two.
func writeHeader(buf *bytes.Buffer, w, h int, table colorTable) {
	buf.Write(magic89)
	var lsd [7]byte
	binary.LittleEndian.PutUint16(lsd[0:2], uint16(w))
	binary.LittleEndian.PutUint16(lsd[2:4], uint16(h))
	if table != nil {
		lsd[4] = 0x80 | byte(sizeBits(len(table)))
	}
	buf.Write(lsd[:])
	for _, e := range table {
		buf.Write(e[:])
	}
}

// writeImage emits an image descriptor, optional local color table and
// the LZW-compressed indices
func writeImage(buf *bytes.Buffer, w, h int, packed byte, lct colorTable, indices []byte, mcs int) {
	buf.WriteByte(sImageDescriptor)
	var desc [9]byte
	binary.LittleEndian.PutUint16(desc[4:6], uint16(w))
	binary.LittleEndian.PutUint16(desc[6:8], uint16(h))
	if lct != nil {
		packed |= 0x80 | byte(sizeBits(len(lct)))
	}
	desc[8] = packed
	buf.Write(desc[:])
	for _, e := range lct {
		buf.Write(e[:])
	}
	buf.WriteByte(byte(mcs))
	buf.Write(lzwEncode(indices, mcs))
}

func sizeBits(n int) int {
	bits := 0
	for 1<<(bits+1) < n {
		bits++
	}
	return bits
}

// A minimal bilevel image: 2-entry table, 3-bit codes
func TestMinimalColorTable(t *testing.T) {
	var buf bytes.Buffer
	writeHeader(&buf, 4, 2, colorTable{{0, 0, 0}, {255, 255, 255}})
	writeImage(&buf, 4, 2, 0, nil, []byte{0, 1, 1, 0, 1, 0, 0, 1}, 2)
	buf.WriteByte(sTrailer)

	frames, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got := frames[0]
	if got.Channels != 1 {
		t.Fatalf("decoded %d channels, want 1", got.Channels)
	}
	want := []byte{0, 255, 255, 0, 255, 0, 0, 255}
	if !bytes.Equal(got.Pixels, want) {
		t.Errorf("pixels = %v, want %v", got.Pixels, want)
	}
}

func TestColorTableExpansion(t *testing.T) {
	table := colorTable{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}, {10, 20, 30}}
	var buf bytes.Buffer
	writeHeader(&buf, 2, 2, table)
	writeImage(&buf, 2, 2, 0, nil, []byte{0, 1, 2, 3}, 2)
	buf.WriteByte(sTrailer)

	frames, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got := frames[0]
	if got.Channels != 3 {
		t.Fatalf("decoded %d channels, want 3", got.Channels)
	}
	want := []byte{255, 0, 0, 0, 255, 0, 0, 0, 255, 10, 20, 30}
	if !bytes.Equal(got.Pixels, want) {
		t.Errorf("pixels = %v, want %v", got.Pixels, want)
	}
}

// A local color table shadows the global one for its frame only
func TestLocalColorTable(t *testing.T) {
	global := colorTable{{0, 0, 0}, {255, 255, 255}}
	local := colorTable{{200, 0, 0}, {0, 0, 200}}
	var buf bytes.Buffer
	writeHeader(&buf, 1, 1, global)
	writeImage(&buf, 1, 1, 0, local, []byte{1}, 2)
	writeImage(&buf, 1, 1, 0, nil, []byte{1}, 2)
	buf.WriteByte(sTrailer)

	frames, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(frames))
	}
	if !bytes.Equal(frames[0].Pixels, []byte{0, 0, 200}) {
		t.Errorf("local-table frame = %v, want [0 0 200]", frames[0].Pixels)
	}
	if frames[1].Channels != 1 || frames[1].Pixels[0] != 255 {
		t.Errorf("global-table frame = %v (%d channels), want [255]",
			frames[1].Pixels, frames[1].Channels)
	}
}

func TestReaderRejects(t *testing.T) {
	table := colorTable{{0, 0, 0}, {255, 255, 255}}

	interlaced := func() []byte {
		var buf bytes.Buffer
		writeHeader(&buf, 2, 2, table)
		writeImage(&buf, 2, 2, 0x40, nil, []byte{0, 1, 0, 1}, 2)
		buf.WriteByte(sTrailer)
		return buf.Bytes()
	}()

	noTable := func() []byte {
		var buf bytes.Buffer
		writeHeader(&buf, 2, 2, nil)
		writeImage(&buf, 2, 2, 0, nil, []byte{0, 1, 0, 1}, 2)
		buf.WriteByte(sTrailer)
		return buf.Bytes()
	}()

	indexOutOfRange := func() []byte {
		var buf bytes.Buffer
		writeHeader(&buf, 2, 2, table)
		writeImage(&buf, 2, 2, 0, nil, []byte{0, 1, 3, 0}, 2)
		buf.WriteByte(sTrailer)
		return buf.Bytes()
	}()

	unknownBlock := func() []byte {
		var buf bytes.Buffer
		writeHeader(&buf, 2, 2, table)
		buf.WriteByte(0x55)
		return buf.Bytes()
	}()

	tooFewPixels := func() []byte {
		var buf bytes.Buffer
		writeHeader(&buf, 4, 4, table)
		writeImage(&buf, 4, 4, 0, nil, []byte{0, 1, 0}, 2)
		buf.WriteByte(sTrailer)
		return buf.Bytes()
	}()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"interlaced frame", interlaced, codec.ErrUnsupported},
		{"no color table", noTable, codec.ErrUnsupported},
		{"index out of range", indexOutOfRange, codec.ErrInvalidParameter},
		{"unknown block introducer", unknownBlock, codec.ErrUnsupported},
		{"too few pixels", tooFewPixels, codec.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// A graphic control extension with the transparency flag set surfaces
// its index on the reader for the frame that follows, and only that one
func TestTransparencyIndex(t *testing.T) {
	var buf bytes.Buffer
	writeHeader(&buf, 1, 1, colorTable{{0, 0, 0}, {255, 255, 255}})
	// flag set, no delay, transparent index 1
	buf.Write([]byte{sExtension, eGraphicControl, 4, 0x01, 0, 0, 1, 0})
	writeImage(&buf, 1, 1, 0, nil, []byte{0}, 2)
	writeImage(&buf, 1, 1, 0, nil, []byte{1}, 2)
	buf.WriteByte(sTrailer)

	r, err := NewReader(buf.Bytes())
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if r.Transparent != 1 {
		t.Errorf("transparent index = %d, want 1", r.Transparent)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if r.Transparent != -1 {
		t.Errorf("transparent index without control block = %d, want -1", r.Transparent)
	}
}

func TestGrayscaleDetection(t *testing.T) {
	if !(colorTable{{0, 0, 0}, {128, 128, 128}}).grayscale() {
		t.Error("all-gray table not detected as grayscale")
	}
	if (colorTable{{0, 0, 0}, {128, 128, 129}}).grayscale() {
		t.Error("non-gray table detected as grayscale")
	}
}

// GIF87a streams carry no extensions but decode the same way
func TestGIF87a(t *testing.T) {
	var buf bytes.Buffer
	writeHeader(&buf, 1, 1, colorTable{{0, 0, 0}, {80, 80, 80}})
	writeImage(&buf, 1, 1, 0, nil, []byte{1}, 2)
	buf.WriteByte(sTrailer)
	data := buf.Bytes()
	copy(data, magic87)

	frames, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if frames[0].Pixels[0] != 80 {
		t.Errorf("pixel = %d, want 80", frames[0].Pixels[0])
	}
}
