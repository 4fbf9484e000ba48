package registry

import "iter"

// Context is the host-owned store a plugin populates during load.
//
// V is the capability variant type shared by host and plugins. Typed
// retrieval is offered by the package-level Get and GetMut functions because
// Go methods cannot declare their own type parameters.
type Context[V any] interface {
	// Register appends a variant. It cannot fail.
	Register(item V)

	// RegisterAny appends item if it is a V and returns ErrTypeMismatch
	// otherwise, leaving the registry unchanged.
	RegisterAny(item any) error

	// Len returns the number of registered variants of every kind.
	Len() int

	// All iterates every variant in insertion order.
	All() iter.Seq2[int, V]
}
