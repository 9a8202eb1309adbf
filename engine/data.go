package engine

import "fmt"

// The element format of a Data buffer.
type DataFormat uint8

const (
	// 3 floats per element.
	Float3 DataFormat = iota

	// 3 floats per element padded to 4.
	Float3A

	// 4 floats per element.
	Float4

	// 3 int32 per element.
	Int3

	// 4 int32 per element.
	Int4

	// One light reference per element.
	LightRef
)

// Get the number of scalar components in a single element. The padding
// float of Float3A counts as a component.
func (f DataFormat) Components() int {
	switch f {
	case Float3:
		return 3
	case Float3A, Float4, Int4:
		return 4
	case Int3:
		return 3
	default:
		return 1
	}
}

// Implements Stringer.
func (f DataFormat) String() string {
	switch f {
	case Float3:
		return "float3"
	case Float3A:
		return "float3a"
	case Float4:
		return "float4"
	case Int3:
		return "int3"
	case Int4:
		return "int4"
	case LightRef:
		return "light"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// A typed array that can be bound to an object parameter slot. The payload
// is copied when the Data is created.
type Data struct {
	object

	format DataFormat
	count  int

	floats []float32
	ints   []int32
	lights []*Light
}

// Create a new data buffer with count elements of the given format. The
// payload must be a []float32 (float formats), []int32 (int formats) or
// []*Light (LightRef) holding exactly count * format.Components() values.
func (d *Device) NewData(count int, format DataFormat, payload interface{}) (*Data, error) {
	data := &Data{
		object: newObject("data", format.String()),
		format: format,
		count:  count,
	}

	expLen := count * format.Components()
	gotLen := -1
	switch format {
	case Float3, Float3A, Float4:
		if src, ok := payload.([]float32); ok {
			gotLen = len(src)
			data.floats = append([]float32(nil), src...)
		}
	case Int3, Int4:
		if src, ok := payload.([]int32); ok {
			gotLen = len(src)
			data.ints = append([]int32(nil), src...)
		}
	case LightRef:
		if src, ok := payload.([]*Light); ok {
			gotLen = len(src)
			data.lights = append([]*Light(nil), src...)
		}
	default:
		return nil, fmt.Errorf("%w: data format %s", ErrUnknownType, format)
	}

	if gotLen == -1 {
		return nil, fmt.Errorf("%w: %s payload of type %T", ErrDataMismatch, format, payload)
	}
	if count < 0 || gotLen != expLen {
		return nil, fmt.Errorf("%w: %d x %s needs %d values; got %d", ErrDataMismatch, count, format, expLen, gotLen)
	}

	return data, nil
}

// Get the element format.
func (data *Data) Format() DataFormat {
	return data.format
}

// Get the number of elements.
func (data *Data) Len() int {
	return data.count
}

// Commit the data buffer. Referenced lights must already be committed.
func (data *Data) Commit() error {
	for idx, light := range data.lights {
		if light == nil || !light.Committed() {
			return fmt.Errorf("%w: light %d in light data", ErrNotCommitted, idx)
		}
	}
	data.apply(data.staged())
	return nil
}
