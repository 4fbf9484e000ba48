package abi

import (
	"errors"
	"fmt"
	"unsafe"
)

var (
	// ErrNilContext is returned by Unbox for a nil pointer.
	ErrNilContext = errors.New("nil context pointer")

	// ErrContextType is returned by Unbox when the boxed value is not the
	// type the plugin was built against.
	ErrContextType = errors.New("context type mismatch")
)

// Box wraps v in an interface cell and returns the cell's address for
// load_plugin. The caller keeps v reachable for the duration of the call.
func Box(v any) unsafe.Pointer {
	cell := new(any)
	*cell = v
	return unsafe.Pointer(cell)
}

// Unbox recovers the value boxed at p as a T.
//
// p must come from Box. This is the only place the opaque pointer is cast;
// the type assertion after it turns a host/plugin disagreement into
// ErrContextType.
func Unbox[T any](p unsafe.Pointer) (T, error) {
	var zero T
	if p == nil {
		return zero, ErrNilContext
	}
	v, ok := (*(*any)(p)).(T)
	if !ok {
		return zero, fmt.Errorf("%w: have %T, want %T", ErrContextType, *(*any)(p), zero)
	}
	return v, nil
}
