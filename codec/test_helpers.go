package codec

// TestFrame builds a deterministic synthetic frame for codec tests.
// The pixel pattern depends on the seed so multi-frame tests can tell
// frames apart.
func TestFrame(width, height, channels int, seed uint32) *Image {
	img := NewImage(width, height, channels)
	// xorshift32 keeps the pattern reproducible without math/rand
	state := seed | 1
	for i := range img.Pixels {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		img.Pixels[i] = byte(state)
	}
	return img
}

// TestGradient builds a frame with a smooth horizontal ramp. Useful for
// exercising predictive filters and LZW run handling on compressible data.
func TestGradient(width, height, channels int) *Image {
	img := NewImage(width, height, channels)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < channels; c++ {
				img.Pixels[(y*width+x)*channels+c] = byte((x*255/max(width-1, 1) + y) % 256)
			}
		}
	}
	return img
}
