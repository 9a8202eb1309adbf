package engine

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/swatinair123/OSprayLoadObj/types"
)

// A small deterministic random number generator seeded per pixel and frame
// so that repeated renders of the same frame index produce identical output.
type sampler struct {
	state uint32
}

func newSampler(x, y, frame uint32) sampler {
	s := sampler{state: hash32(x*0x8da6b343 ^ y*0xd8163841 ^ frame*0xcb1ab31f)}
	if s.state == 0 {
		s.state = 0x9e3779b9
	}
	return s
}

// Integer hash from the lowbias32 family.
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// Get the next uniform float in [0, 1).
func (s *sampler) next() float32 {
	// xorshift32
	s.state ^= s.state << 13
	s.state ^= s.state >> 17
	s.state ^= s.state << 5
	return float32(s.state>>8) / float32(1<<24)
}

// Generate a cosine weighted direction in the hemisphere around n.
func (s *sampler) cosineHemisphere(n types.Vec3) types.Vec3 {
	r1, r2 := s.next(), s.next()
	phi := 2 * math.Pi * r1
	r := math32.Sqrt(r2)
	x, y, z := r*math32.Cos(phi), r*math32.Sin(phi), math32.Sqrt(1-r2)

	// Build an orthonormal basis around n
	var a types.Vec3
	if math32.Abs(n[0]) > 0.9 {
		a = types.Vec3{0, 1, 0}
	} else {
		a = types.Vec3{1, 0, 0}
	}
	t := a.Cross(n).Normalize()
	b := n.Cross(t)

	return t.Mul(x).Add(b.Mul(y)).Add(n.Mul(z)).Normalize()
}

// Encode a linear channel value in [0, 1] as an sRGB byte.
func srgbByte(c float32) byte {
	c = clamp01(c)
	if c <= 0.0031308 {
		c *= 12.92
	} else {
		c = 1.055*math32.Pow(c, 1/2.4) - 0.055
	}
	return byte(c*255 + 0.5)
}

// Encode a linear channel value in [0, 1] as a byte.
func linearByte(c float32) byte {
	return byte(clamp01(c)*255 + 0.5)
}

func clamp01(c float32) float32 {
	switch {
	case c != c, c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
