package engine

import (
	"encoding/binary"
	"fmt"
	"math"
)

// A set of framebuffer channels.
type Channel uint8

const (
	// The displayable color channel.
	Color Channel = 1 << iota

	// Hit distance of the most recent pass (+Inf on a miss).
	Depth

	// Accumulate samples across passes instead of replacing them.
	Accum
)

// Implements Stringer.
func (ch Channel) String() string {
	var out string
	for _, entry := range []struct {
		flag Channel
		name string
	}{{Color, "color"}, {Depth, "depth"}, {Accum, "accum"}} {
		if ch&entry.flag == 0 {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += entry.name
	}
	if out == "" {
		return "none"
	}
	return out
}

// The byte encoding of the color channel.
type Format uint8

const (
	// 8 bit sRGB encoded color with linear alpha.
	SRGBA Format = iota

	// 8 bit linear color and alpha.
	RGBA8
)

// Implements Stringer.
func (f Format) String() string {
	switch f {
	case SRGBA:
		return "srgba"
	case RGBA8:
		return "rgba8"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// A fixed size render target. Pixels are stored row-major with row 0 at the
// bottom of the image. The color channel is 4 bytes per pixel.
type FrameBuffer struct {
	width, height uint32
	format        Format
	channels      Channel

	// Float RGBA sample sums and number of accumulated passes.
	sums   []float32
	frames uint32

	color []byte
	depth []float32

	// The currently mapped view, if any.
	mapped []byte
}

// Create a new framebuffer. The color channel is always present.
func (d *Device) NewFrameBuffer(width, height uint32, format Format, channels Channel) (*FrameBuffer, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: framebuffer size %dx%d", ErrInvalidParameter, width, height)
	}
	if format != SRGBA && format != RGBA8 {
		return nil, fmt.Errorf("%w: framebuffer %s", ErrUnknownType, format)
	}

	numPixels := int(width) * int(height)
	fb := &FrameBuffer{
		width:    width,
		height:   height,
		format:   format,
		channels: channels | Color,
		sums:     make([]float32, numPixels*4),
		color:    make([]byte, numPixels*4),
	}
	if channels&Depth != 0 {
		fb.depth = make([]float32, numPixels)
		fb.resetDepth()
	}
	return fb, nil
}

// Get the framebuffer dimensions.
func (fb *FrameBuffer) Size() (width, height uint32) {
	return fb.width, fb.height
}

// Get the color format.
func (fb *FrameBuffer) Format() Format {
	return fb.format
}

// Get the available channels.
func (fb *FrameBuffer) Channels() Channel {
	return fb.channels
}

// Get the number of passes accumulated since the last clear.
func (fb *FrameBuffer) Frames() uint32 {
	return fb.frames
}

// Reset the requested channels. Clearing Accum discards all accumulated
// samples; clearing Color zeroes the displayed pixels.
func (fb *FrameBuffer) Clear(channels Channel) error {
	if fb.mapped != nil {
		return ErrMapped
	}

	if channels&Accum != 0 {
		for idx := range fb.sums {
			fb.sums[idx] = 0
		}
		fb.frames = 0
	}
	if channels&Color != 0 {
		for idx := range fb.color {
			fb.color[idx] = 0
		}
	}
	if channels&Depth != 0 && fb.depth != nil {
		fb.resetDepth()
	}
	return nil
}

// Acquire a snapshot view of a single channel. The view is a copy, so
// writes to it never reach the framebuffer. It must be passed to Unmap
// before the framebuffer can be rendered or cleared again. Depth is exposed
// as little-endian float32 values.
func (fb *FrameBuffer) Map(channel Channel) ([]byte, error) {
	if fb.mapped != nil {
		return nil, ErrAlreadyMapped
	}

	switch {
	case channel == Color:
		fb.mapped = append(make([]byte, 0, len(fb.color)), fb.color...)
	case channel == Depth && fb.depth != nil:
		view := make([]byte, len(fb.depth)*4)
		for idx, d := range fb.depth {
			binary.LittleEndian.PutUint32(view[idx*4:], math.Float32bits(d))
		}
		fb.mapped = view
	default:
		return nil, fmt.Errorf("%w: cannot map %s", ErrInvalidChannel, channel)
	}
	return fb.mapped, nil
}

// Release a view obtained by Map.
func (fb *FrameBuffer) Unmap(view []byte) error {
	if fb.mapped == nil {
		return ErrNotMapped
	}
	if len(view) != len(fb.mapped) || (len(view) != 0 && &view[0] != &fb.mapped[0]) {
		return fmt.Errorf("%w: view does not belong to this framebuffer", ErrInvalidParameter)
	}
	fb.mapped = nil
	return nil
}

func (fb *FrameBuffer) resetDepth() {
	inf := float32(math.Inf(1))
	for idx := range fb.depth {
		fb.depth[idx] = inf
	}
}

// Add a pass sample to pixel (x, y) and refresh its color bytes using the
// supplied total frame count. Different rows may be updated concurrently.
func (fb *FrameBuffer) accumulate(x, y uint32, rgba [4]float32, depth float32, replace bool, frames uint32) {
	pixel := int(y)*int(fb.width) + int(x)
	sum := fb.sums[pixel*4 : pixel*4+4]
	if replace {
		copy(sum, rgba[:])
		frames = 1
	} else {
		for c := 0; c < 4; c++ {
			sum[c] += rgba[c]
		}
	}

	scale := 1.0 / float32(frames)
	out := fb.color[pixel*4 : pixel*4+4]
	for c := 0; c < 3; c++ {
		if fb.format == SRGBA {
			out[c] = srgbByte(sum[c] * scale)
		} else {
			out[c] = linearByte(sum[c] * scale)
		}
	}
	out[3] = linearByte(sum[3] * scale)

	if fb.depth != nil {
		fb.depth[pixel] = depth
	}
}
