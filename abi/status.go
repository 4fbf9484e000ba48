package abi

import (
	"errors"
	"fmt"
)

// Status is the code load_plugin returns. Zero is success.
type Status int32

const (
	StatusOK           Status = 0
	StatusFailed       Status = -1
	StatusNilContext   Status = -2
	StatusPanicked     Status = -3
	StatusTypeMismatch Status = -4
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "load failed"
	case StatusNilContext:
		return "nil context"
	case StatusPanicked:
		return "plugin panicked"
	case StatusTypeMismatch:
		return "context type mismatch"
	default:
		return fmt.Sprintf("status %d", int32(s))
	}
}

// StatusOf maps a plugin-side error to the code reported across the
// boundary.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrNilContext):
		return StatusNilContext
	case errors.Is(err, ErrContextType):
		return StatusTypeMismatch
	default:
		return StatusFailed
	}
}
