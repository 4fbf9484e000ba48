// Package export is the plugin-side runtime used by generated entry points.
// It allocates boundary strings with the C allocator and keeps panics from
// crossing into the host.
package export

/*
#include <stdlib.h>
*/
import "C"

import (
	"log/slog"
	"strings"
	"unsafe"

	"github.com/reglet-dev/native-host-sdk/abi"
)

// Plugin is implemented by a plugin's root type. R is the registry type the
// host passes to load_plugin.
type Plugin[R any] interface {
	Author() string
	ID() string
	Load(registry R) error
}

// String calls fn and returns its result as a C string owned by the caller.
// It returns nil if fn panics or the result contains a NUL byte.
func String(fn func() string) (p unsafe.Pointer) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("plugin metadata panicked", "panic", r)
			p = nil
		}
	}()
	s := fn()
	if strings.IndexByte(s, 0) >= 0 {
		return nil
	}
	return unsafe.Pointer(C.CString(s))
}

// Free releases a string returned by String.
func Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	C.free(p)
}

// Load unboxes the host context as R and passes it to fn, reporting the
// outcome as an abi.Status.
func Load[R any](ctx unsafe.Pointer, fn func(R) error) (status int32) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("plugin load panicked", "panic", r)
			status = int32(abi.StatusPanicked)
		}
	}()

	registry, err := abi.Unbox[R](ctx)
	if err != nil {
		slog.Error("plugin load rejected context", "error", err)
		return int32(abi.StatusOf(err))
	}
	if err := fn(registry); err != nil {
		slog.Error("plugin load failed", "error", err)
		return int32(abi.StatusFailed)
	}
	return int32(abi.StatusOK)
}
