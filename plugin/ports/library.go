package ports

import (
	"context"

	"github.com/reglet-dev/native-host-sdk/abi"
)

// LibraryOpener maps a file into the process as a dynamic library.
type LibraryOpener interface {
	Open(ctx context.Context, path string) (abi.Library, error)
}

// LibraryOpenerFunc adapts a function to LibraryOpener.
type LibraryOpenerFunc func(ctx context.Context, path string) (abi.Library, error)

// Open implements LibraryOpener.
func (f LibraryOpenerFunc) Open(ctx context.Context, path string) (abi.Library, error) {
	return f(ctx, path)
}
