package shimgen

import "errors"

var (
	// ErrNoPlugin means the package declares no type with Author, ID and
	// Load methods.
	ErrNoPlugin = errors.New("no plugin type found")

	// ErrAmbiguousPlugin means more than one type qualifies and the
	// descriptor does not name one.
	ErrAmbiguousPlugin = errors.New("more than one plugin type found")

	// ErrPluginNotFound means the descriptor names a type that does not
	// implement the plugin methods.
	ErrPluginNotFound = errors.New("plugin type not found")

	// ErrRegistryMismatch means the descriptor registry type differs from
	// the parameter of the scanned Load method.
	ErrRegistryMismatch = errors.New("registry type does not match Load parameter")

	// ErrPackageMismatch means the descriptor package differs from the
	// scanned package name.
	ErrPackageMismatch = errors.New("package name does not match")

	// ErrUnresolvedImport means the registry type uses a package qualifier
	// no import provides.
	ErrUnresolvedImport = errors.New("unresolved package in registry type")

	// ErrNoSources means the directory holds no non-generated Go files.
	ErrNoSources = errors.New("no Go source files")
)
