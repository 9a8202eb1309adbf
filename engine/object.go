package engine

import (
	"fmt"

	"github.com/swatinair123/OSprayLoadObj/types"
)

// Object is implemented by all engine-owned scene objects. Parameter edits
// stay pending until Commit; a failed Commit keeps the previously committed
// state and the pending edits.
type Object interface {
	// The object type tag (e.g. "perspective", "triangles").
	Type() string

	// Apply pending parameter edits.
	Commit() error

	// Returns true once the object has been successfully committed.
	Committed() bool
}

// A set of named parameters.
type params map[string]interface{}

// The parameter bookkeeping shared by all object kinds.
type object struct {
	kind     string
	typeName string

	pending   params
	committed params

	isCommitted bool
}

func newObject(kind, typeName string) object {
	return object{
		kind:      kind,
		typeName:  typeName,
		pending:   make(params),
		committed: make(params),
	}
}

// Get the object type tag.
func (o *object) Type() string {
	return o.typeName
}

// Returns true once the object has been successfully committed.
func (o *object) Committed() bool {
	return o.isCommitted
}

// Queue a parameter assignment. Supported values are float32, int32, int,
// float64, types.Vec3, types.Vec4, *Data and Object instances.
func (o *object) Set(name string, value interface{}) {
	o.pending[name] = value
}

// Queue a float parameter.
func (o *object) SetFloat(name string, value float32) {
	o.Set(name, value)
}

// Queue an integer parameter.
func (o *object) SetInt(name string, value int32) {
	o.Set(name, value)
}

// Queue a 3 component vector parameter.
func (o *object) SetVec3(name string, value types.Vec3) {
	o.Set(name, value)
}

// Queue a 4 component vector parameter.
func (o *object) SetVec4(name string, value types.Vec4) {
	o.Set(name, value)
}

// Queue a data parameter.
func (o *object) SetData(name string, data *Data) {
	o.Set(name, data)
}

// Queue an object reference parameter.
func (o *object) SetObject(name string, obj Object) {
	o.Set(name, obj)
}

// Remove a parameter.
func (o *object) Unset(name string) {
	o.Set(name, nil)
}

// Build the parameter set that a commit would produce without applying it.
func (o *object) staged() params {
	out := make(params, len(o.committed)+len(o.pending))
	for k, v := range o.committed {
		out[k] = v
	}
	for k, v := range o.pending {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Make the staged parameters the committed ones.
func (o *object) apply(p params) {
	o.committed = p
	o.pending = make(params)
	o.isCommitted = true
}

func (o *object) String() string {
	return fmt.Sprintf("%s(%s)", o.kind, o.typeName)
}

// Get a float parameter.
func (p params) getFloat(name string, def float32) (float32, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	switch t := v.(type) {
	case float32:
		return t, nil
	case float64:
		return float32(t), nil
	case int32:
		return float32(t), nil
	case int:
		return float32(t), nil
	}
	return def, fmt.Errorf("%w: %q expects a float; got %T", ErrInvalidParameter, name, v)
}

// Get an integer parameter.
func (p params) getInt(name string, def int32) (int32, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	switch t := v.(type) {
	case int32:
		return t, nil
	case int:
		return int32(t), nil
	}
	return def, fmt.Errorf("%w: %q expects an integer; got %T", ErrInvalidParameter, name, v)
}

// Get a 3 component vector parameter. Scalars are splatted.
func (p params) getVec3(name string, def types.Vec3) (types.Vec3, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	switch t := v.(type) {
	case types.Vec3:
		return t, nil
	case [3]float32:
		return types.Vec3(t), nil
	case []float32:
		if len(t) == 3 {
			return types.Vec3{t[0], t[1], t[2]}, nil
		}
	case float32, float64, int32, int:
		s, err := p.getFloat(name, 0)
		return types.Vec3{s, s, s}, err
	}
	return def, fmt.Errorf("%w: %q expects a vec3; got %T", ErrInvalidParameter, name, v)
}

// Get a data parameter.
func (p params) getData(name string) (*Data, error) {
	v, ok := p[name]
	if !ok {
		return nil, nil
	}
	data, ok := v.(*Data)
	if !ok || data == nil {
		return nil, fmt.Errorf("%w: %q expects data; got %T", ErrInvalidParameter, name, v)
	}
	if !data.Committed() {
		return nil, fmt.Errorf("%w: data bound to %q", ErrNotCommitted, name)
	}
	return data, nil
}
