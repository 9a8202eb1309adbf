package engine

import (
	"fmt"

	"github.com/swatinair123/OSprayLoadObj/types"
)

// An ambient light. Parameters:
//
//	color      vec3   light color (default 1,1,1)
//	intensity  float  radiance scale (default 1)
type Light struct {
	object

	// Committed radiance (color * intensity).
	radiance types.Vec3
}

// Create a new light. Only the "ambient" type is supported.
func (d *Device) NewLight(typeName string) (*Light, error) {
	if typeName != "ambient" {
		return nil, fmt.Errorf("%w: light %q", ErrUnknownType, typeName)
	}
	return &Light{object: newObject("light", typeName)}, nil
}

func (l *Light) Commit() error {
	p := l.staged()

	color, err := p.getVec3("color", types.Vec3{1, 1, 1})
	if err != nil {
		return err
	}
	intensity, err := p.getFloat("intensity", 1)
	if err != nil {
		return err
	}
	if intensity < 0 {
		return fmt.Errorf("%w: light intensity %f", ErrInvalidParameter, intensity)
	}

	l.radiance = color.Mul(intensity)
	l.apply(p)
	return nil
}

// Get the committed radiance.
func (l *Light) Radiance() types.Vec3 {
	return l.radiance
}
