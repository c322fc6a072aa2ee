package codec

import "fmt"

// Image is an in-memory 8-bit pixel buffer in row-major order.
// Grayscale images have 1 channel, RGB images have 3; pixels of a row are
// stored left to right with channels interleaved.
type Image struct {
	Pixels   []byte // Raw pixel data, len == Width*Height*Channels
	Width    int    // Image width in pixels
	Height   int    // Image height in pixels
	Channels int    // Number of color components (1=grayscale, 3=RGB)
	BitDepth int    // Bits per sample (only 8 is supported)
}

// NewImage allocates a zeroed image buffer with the given geometry
func NewImage(width, height, channels int) *Image {
	return &Image{
		Pixels:   make([]byte, width*height*channels),
		Width:    width,
		Height:   height,
		Channels: channels,
		BitDepth: 8,
	}
}

// Validate checks the image invariants before encoding
func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidParameter)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrInvalidParameter, img.Width, img.Height)
	}
	if img.Channels != 1 && img.Channels != 3 {
		return fmt.Errorf("%w: %d channels (must be 1 or 3)", ErrUnsupported, img.Channels)
	}
	if img.BitDepth != 8 {
		return fmt.Errorf("%w: bit depth %d (must be 8)", ErrUnsupported, img.BitDepth)
	}
	if len(img.Pixels) != img.Width*img.Height*img.Channels {
		return fmt.Errorf("%w: pixel buffer is %d bytes, want %d",
			ErrInvalidParameter, len(img.Pixels), img.Width*img.Height*img.Channels)
	}
	return nil
}

// Mode returns the PIL-style mode string for the image
func (img *Image) Mode() string {
	if img.Channels == 1 {
		return "L"
	}
	return "RGB"
}

// Gray returns a single-channel view of the image. RGB pixels are reduced
// with the usual luminance weights; grayscale images are returned as-is.
func (img *Image) Gray() *Image {
	if img.Channels == 1 {
		return img
	}
	out := NewImage(img.Width, img.Height, 1)
	for i := 0; i < img.Width*img.Height; i++ {
		r := int(img.Pixels[3*i])
		g := int(img.Pixels[3*i+1])
		b := int(img.Pixels[3*i+2])
		// ITU-R BT.601 luma, fixed point
		out.Pixels[i] = byte((299*r + 587*g + 114*b + 500) / 1000)
	}
	return out
}
