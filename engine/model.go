package engine

import (
	"fmt"

	"github.com/swatinair123/OSprayLoadObj/types"
)

// A world container for geometries.
type Model struct {
	object

	pendingGeometries []*Geometry

	// Committed state.
	geometries []*Geometry
}

// Create a new empty model.
func (d *Device) NewModel() *Model {
	return &Model{object: newObject("model", "model")}
}

// Queue a geometry for addition to the model.
func (m *Model) AddGeometry(g *Geometry) {
	m.pendingGeometries = append(m.pendingGeometries, g)
}

// Commit the geometry list. All geometries must be committed.
func (m *Model) Commit() error {
	for idx, g := range m.pendingGeometries {
		if g == nil || !g.Committed() {
			return fmt.Errorf("%w: geometry %d added to model", ErrNotCommitted, idx)
		}
	}

	m.geometries = append([]*Geometry(nil), m.pendingGeometries...)
	m.apply(m.staged())
	return nil
}

// Get the number of committed geometries.
func (m *Model) NumGeometries() int {
	return len(m.geometries)
}

// Find the closest hit along a ray.
func (m *Model) intersect(origin, dir types.Vec3, tMax float32, rec *hitRecord) bool {
	invDir := reciprocal(dir)
	found := false
	for _, g := range m.geometries {
		if g.intersect(origin, dir, invDir, tMax, false, rec) {
			found = true
			tMax = rec.t
		}
	}
	return found
}

// Returns true if anything blocks the ray before tMax.
func (m *Model) occluded(origin, dir types.Vec3, tMax float32) bool {
	invDir := reciprocal(dir)
	var rec hitRecord
	for _, g := range m.geometries {
		if g.intersect(origin, dir, invDir, tMax, true, &rec) {
			return true
		}
	}
	return false
}

// Calculate the component-wise reciprocal of a direction, mapping zero
// components to a large finite value so slab tests stay NaN free.
func reciprocal(dir types.Vec3) types.Vec3 {
	var out types.Vec3
	for axis := 0; axis < 3; axis++ {
		switch {
		case dir[axis] > 1e-20:
			out[axis] = 1.0 / dir[axis]
		case dir[axis] < -1e-20:
			out[axis] = 1.0 / dir[axis]
		default:
			out[axis] = 1e30
		}
	}
	return out
}
