package abi

// Library is a mapped dynamic library.
//
// There is deliberately no Close: code and data a plugin registered stay
// reachable through the host's registry, so a library stays mapped for the
// life of the process.
type Library interface {
	// Path returns the file the library was opened from.
	Path() string

	// Lookup resolves an ABI symbol name (see Symbols) to its value.
	Lookup(symbol string) (any, error)
}
