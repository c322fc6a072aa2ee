package gif

import (
	"fmt"

	"github.com/cocosip/go-raster-codec/codec"
)

// Options contains GIF-specific encoding options
type Options struct {
	// Delay is the per-frame delay in hundredths of a second
	Delay int

	// Loop is the animation loop count for multi-frame streams;
	// 0 repeats forever
	Loop int
}

// DefaultOptions returns the default encoding options: no delay,
// loop forever
func DefaultOptions() *Options {
	return &Options{}
}

// Validate checks if the options are valid
func (o *Options) Validate() error {
	if o.Delay < 0 || o.Delay > 0xFFFF {
		return fmt.Errorf("%w: delay %d", codec.ErrInvalidParameter, o.Delay)
	}
	if o.Loop < 0 || o.Loop > 0xFFFF {
		return fmt.Errorf("%w: loop count %d", codec.ErrInvalidParameter, o.Loop)
	}
	return nil
}
