package engine

import (
	"errors"
	"fmt"
)

// Status is the result code of engine initialization. A non-zero status is
// fatal and is used as the process exit code.
type Status int

const (
	NoError Status = iota
	UnknownError
	InvalidArgument
	InvalidOperation
	OutOfMemory
	UnsupportedCPU
)

// Implements error.
func (s Status) Error() string {
	switch s {
	case NoError:
		return "engine: no error"
	case UnknownError:
		return "engine: unknown error"
	case InvalidArgument:
		return "engine: invalid argument"
	case InvalidOperation:
		return "engine: invalid operation"
	case OutOfMemory:
		return "engine: out of memory"
	case UnsupportedCPU:
		return "engine: unsupported cpu"
	default:
		return fmt.Sprintf("engine: status %d", int(s))
	}
}

// Extract the engine status carried by err. A nil error maps to NoError and
// errors that do not wrap a Status map to UnknownError.
func StatusOf(err error) Status {
	if err == nil {
		return NoError
	}

	var status Status
	if errors.As(err, &status) {
		return status
	}
	return UnknownError
}
