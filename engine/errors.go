package engine

import "errors"

var (
	ErrUnknownType      = errors.New("engine: unknown object type")
	ErrNotCommitted     = errors.New("engine: object used before it was committed")
	ErrMissingParameter = errors.New("engine: missing required parameter")
	ErrInvalidParameter = errors.New("engine: invalid parameter value")
	ErrDataMismatch     = errors.New("engine: data payload does not match format and count")
	ErrInvalidChannel   = errors.New("engine: framebuffer channel not available")
	ErrAlreadyMapped    = errors.New("engine: framebuffer already mapped")
	ErrNotMapped        = errors.New("engine: framebuffer not mapped")
	ErrMapped           = errors.New("engine: framebuffer is mapped")
	ErrDeviceClosed     = errors.New("engine: device closed")
)
