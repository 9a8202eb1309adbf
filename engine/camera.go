package engine

import (
	"fmt"
	"math"

	"github.com/swatinair123/OSprayLoadObj/types"
)

// Stores the ray directions at the four corners of the camera frustrum
// (TL, TR, BL, BR). Per pixel rays are generated by interpolating the
// corner rays.
type Frustrum [4]types.Vec3

func (fr Frustrum) String() string {
	return fmt.Sprintf(
		"Frustrum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// A perspective camera. Parameters:
//
//	aspect  float  image width / height (default 1)
//	pos     vec3   eye position (default 0,0,0)
//	dir     vec3   view direction (default 0,0,1)
//	up      vec3   up vector (default 0,1,0)
//	fovy    float  vertical field of view in degrees (default 60)
type Camera struct {
	object

	// Committed state.
	position types.Vec3
	frustrum Frustrum
}

// Create a new camera. Only the "perspective" type is supported.
func (d *Device) NewCamera(typeName string) (*Camera, error) {
	if typeName != "perspective" {
		return nil, fmt.Errorf("%w: camera %q", ErrUnknownType, typeName)
	}
	return &Camera{object: newObject("camera", typeName)}, nil
}

// Commit pending parameters and rebuild the frustrum.
func (c *Camera) Commit() error {
	p := c.staged()

	aspect, err := p.getFloat("aspect", 1)
	if err != nil {
		return err
	}
	pos, err := p.getVec3("pos", types.Vec3{0, 0, 0})
	if err != nil {
		return err
	}
	dir, err := p.getVec3("dir", types.Vec3{0, 0, 1})
	if err != nil {
		return err
	}
	up, err := p.getVec3("up", types.Vec3{0, 1, 0})
	if err != nil {
		return err
	}
	fovy, err := p.getFloat("fovy", 60)
	if err != nil {
		return err
	}

	if aspect <= 0 || fovy <= 0 || fovy >= 180 {
		return fmt.Errorf("%w: camera aspect %f / fovy %f", ErrInvalidParameter, aspect, fovy)
	}

	dir = dir.Normalize()
	du := dir.Cross(up).Normalize()
	if dir == (types.Vec3{}) || du == (types.Vec3{}) {
		return fmt.Errorf("%w: camera dir %v and up %v must be non-zero and not parallel", ErrInvalidParameter, dir, up)
	}
	dv := du.Cross(dir)

	halfH := float32(math.Tan(float64(fovy) * math.Pi / 360.0))
	halfW := halfH * aspect
	right := du.Mul(halfW)
	top := dv.Mul(halfH)

	c.position = pos
	c.frustrum = Frustrum{
		dir.Sub(right).Add(top),
		dir.Add(right).Add(top),
		dir.Sub(right).Sub(top),
		dir.Add(right).Sub(top),
	}
	c.apply(p)
	return nil
}

// Get the committed eye position.
func (c *Camera) Position() types.Vec3 {
	return c.position
}

// Get the committed frustrum corner rays.
func (c *Camera) Frustrum() Frustrum {
	return c.frustrum
}

// Generate a normalized primary ray direction for screen coordinates (u, v)
// in [0, 1]; (0, 0) is the bottom-left corner of the image.
func (c *Camera) rayDir(u, v float32) types.Vec3 {
	bottom := c.frustrum[2].Lerp(c.frustrum[3], u)
	top := c.frustrum[0].Lerp(c.frustrum[1], u)
	return bottom.Lerp(top, v).Normalize()
}
