// Package goplugin opens native plugin libraries with the Go runtime's
// dynamic loader. Libraries must be built with -buildmode=plugin against the
// same module versions as the host, which is what lets the boxed registry
// pointer given to load_plugin be used directly by plugin code.
package goplugin

import (
	"context"
	"fmt"
	"plugin"

	"github.com/reglet-dev/native-host-sdk/abi"
)

// Opener implements ports.LibraryOpener.
type Opener struct{}

// NewOpener creates an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open maps the library at path. Opening the same path twice yields the same
// underlying plugin.
func (o *Opener) Open(ctx context.Context, path string) (abi.Library, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return &library{path: path, plugin: p}, nil
}

type library struct {
	plugin *plugin.Plugin
	path   string
}

func (l *library) Path() string {
	return l.path
}

// Lookup resolves an ABI symbol through its exported Go name.
func (l *library) Lookup(symbol string) (any, error) {
	sym, err := l.plugin.Lookup(abi.GoName(symbol))
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", abi.GoName(symbol), err)
	}
	return sym, nil
}
