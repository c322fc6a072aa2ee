package gif

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cocosip/go-raster-codec/codec"
)

// GIF-variant LZW: variable code width starting at minCodeSize+1 bits and
// capped at 12, a dictionary of at most 4096 entries, and two reserved
// codes (clear = 1<<minCodeSize, end-of-information = clear+1).
const (
	lzwMaxWidth   = 12
	lzwMaxEntries = 1 << lzwMaxWidth

	minCodeSizeMin = 2
	minCodeSizeMax = 8
)

// lzwEntry encodes a dictionary string as a back-reference: the entry's
// byte sequence is the prefix entry's sequence plus one suffix byte.
type lzwEntry struct {
	prefix int // index of the prefix entry, -1 for literals
	suffix byte
	length int
}

// lzwDecode decodes a sub-block-framed LZW stream. It returns the decoded
// bytes and the number of source bytes consumed, including the sub-block
// terminator.
func lzwDecode(data []byte, minCodeSize int) ([]byte, int, error) {
	if minCodeSize < minCodeSizeMin || minCodeSize > minCodeSizeMax {
		return nil, 0, fmt.Errorf("gif: lzw minimum code size %d: %w",
			minCodeSize, codec.ErrInvalidParameter)
	}

	clear := 1 << minCodeSize
	eoi := clear + 1

	table := make([]lzwEntry, lzwMaxEntries)
	for i := 0; i < clear; i++ {
		table[i] = lzwEntry{prefix: -1, suffix: byte(i), length: 1}
	}

	next := eoi + 1
	width := uint(minCodeSize + 1)
	prev := -1

	r := newBitReader(data)
	var out []byte

	// expand appends the byte sequence of the given code to out,
	// filling backwards along the prefix chain
	expand := func(code int) {
		n := table[code].length
		start := len(out)
		out = append(out, make([]byte, n)...)
		for i := n - 1; i >= 0; i-- {
			out[start+i] = table[code].suffix
			code = table[code].prefix
		}
	}

	// firstByte walks the prefix chain to the leading literal
	firstByte := func(code int) byte {
		for table[code].prefix >= 0 {
			code = table[code].prefix
		}
		return table[code].suffix
	}

loop:
	for {
		c, err := r.readCode(width)
		if err != nil {
			if err == io.EOF {
				// Clean exhaustion without an end-of-information code:
				// the stream was cut between codes.
				return nil, 0, fmt.Errorf("gif: lzw stream missing end code: %w",
					codec.ErrUnexpectedEOF)
			}
			return nil, 0, err
		}
		code := int(c)

		switch {
		case code == clear:
			next = eoi + 1
			width = uint(minCodeSize + 1)
			prev = -1
			codec.Logger().Debug("gif: lzw dictionary reset")
			continue

		case code == eoi:
			break loop

		case code < next:
			expand(code)
			if prev >= 0 && next < lzwMaxEntries {
				table[next] = lzwEntry{
					prefix: prev,
					suffix: firstByte(code),
					length: table[prev].length + 1,
				}
				next++
				if next == 1<<width && width < lzwMaxWidth {
					width++
				}
			}
			prev = code

		case code == next && prev >= 0 && next < lzwMaxEntries:
			// KwKwK: the code being defined by this very step
			table[next] = lzwEntry{
				prefix: prev,
				suffix: firstByte(prev),
				length: table[prev].length + 1,
			}
			expand(next)
			prev = next
			next++
			if next == 1<<width && width < lzwMaxWidth {
				width++
			}

		default:
			return nil, 0, fmt.Errorf("gif: code %d with %d entries defined: %w",
				code, next, codec.ErrInvalidLZWCode)
		}
	}

	consumed, err := r.skipToEnd()
	if err != nil {
		return nil, 0, err
	}
	return out, consumed, nil
}

// lzwEncode compresses data with greedy longest-match LZW and frames the
// result as a GIF sub-block sequence including the terminator. A clear
// code is emitted up front and again whenever the dictionary fills.
func lzwEncode(data []byte, minCodeSize int) []byte {
	clear := 1 << minCodeSize
	eoi := clear + 1

	var buf bytes.Buffer
	w := newBitWriter(&buf)

	next := eoi + 1
	width := uint(minCodeSize + 1)
	table := make(map[string]uint16, lzwMaxEntries)

	reset := func() {
		clearMap(table)
		for i := 0; i < clear; i++ {
			table[string([]byte{byte(i)})] = uint16(i)
		}
		next = eoi + 1
		width = uint(minCodeSize + 1)
	}

	w.writeCode(uint16(clear), width)
	reset()

	var run []byte
	for _, b := range data {
		run = append(run, b)
		if _, ok := table[string(run)]; ok {
			continue
		}
		w.writeCode(table[string(run[:len(run)-1])], width)
		if next < lzwMaxEntries {
			table[string(run)] = uint16(next)
			next++
			// The decoder's mirror insertion happens one code later, so
			// the width grows when the assigned code itself reaches
			// 1<<width, not when the entry count does.
			if next-1 == 1<<width && width < lzwMaxWidth {
				width++
			}
		} else {
			// Table full: reset both sides before continuing
			w.writeCode(uint16(clear), width)
			reset()
		}
		run = run[:1]
		run[0] = b
	}
	if len(run) > 0 {
		w.writeCode(table[string(run)], width)
	}
	w.writeCode(uint16(eoi), width)
	w.finish()
	return buf.Bytes()
}

func clearMap(m map[string]uint16) {
	for k := range m {
		delete(m, k)
	}
}
