// Package imageio is the path-level facade over the registered codecs:
// read, write, iterate and probe image files by path, with the format
// detected from magic bytes and falling back to the file extension.
package imageio

import (
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/cocosip/go-raster-codec/codec"
)

// detect finds the codec for data, preferring magic bytes over the
// path's extension
func detect(data []byte, path string) (codec.Codec, error) {
	if c, err := codec.Detect(data); err == nil {
		return c, nil
	}
	c, err := codec.Get(strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("imageio: %s: %w", path, err)
	}
	return c, nil
}

// Imread reads the image at path. For a multi-frame stream the first
// frame is returned.
func Imread(path string) (*codec.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := detect(data, path)
	if err != nil {
		return nil, err
	}
	if sd, ok := c.(codec.StreamDecoder); ok {
		fr, err := sd.DecodeStream(data)
		if err != nil {
			return nil, err
		}
		img, err := fr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("imageio: %s has no frames: %w", path, codec.ErrUnexpectedEOF)
		}
		return img, err
	}
	result, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	return result.Frames[0], nil
}

// Imwrite writes one or more frames to path, dispatching on the file
// extension. Formats without frame-sequence support reject more than
// one frame.
func Imwrite(path string, frames ...*codec.Image) error {
	c, err := codec.Get(strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return fmt.Errorf("imageio: %s: %w", path, err)
	}
	data, err := c.Encode(codec.EncodeParams{Frames: frames})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Imiter returns a lazy sequence over the frames at path. Multi-frame
// streams are decoded one frame at a time as the caller pulls them;
// single-image formats yield exactly one frame. The sequence is finite
// and single-pass; a decode failure is yielded as the error of its
// element and ends the sequence.
func Imiter(path string) (iter.Seq2[*codec.Image, error], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := detect(data, path)
	if err != nil {
		return nil, err
	}
	return func(yield func(*codec.Image, error) bool) {
		if sd, ok := c.(codec.StreamDecoder); ok {
			fr, err := sd.DecodeStream(data)
			if err != nil {
				yield(nil, err)
				return
			}
			for {
				img, err := fr.Next()
				if err == io.EOF {
					return
				}
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(img, nil) {
					return
				}
			}
		}
		result, err := c.Decode(data)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, f := range result.Frames {
			if !yield(f, nil) {
				return
			}
		}
	}, nil
}

// Improps returns the properties of the image at path without decoding
// pixel data
func Improps(path string) (*codec.Props, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := detect(data, path)
	if err != nil {
		return nil, err
	}
	return c.Probe(data)
}

// Immeta returns format metadata for the image at path. The "mode" key
// is always present.
func Immeta(path string) (map[string]any, error) {
	props, err := Improps(path)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"mode":   props.Mode,
		"width":  props.Width,
		"height": props.Height,
		"frames": props.FrameCount,
	}, nil
}
