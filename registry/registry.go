// Package registry implements the heterogeneous capability registry plugins
// write into during load.
package registry

import (
	"errors"
	"fmt"
	"iter"
)

// ErrTypeMismatch is returned when a value does not belong to the registry's
// variant type.
var ErrTypeMismatch = errors.New("type mismatch")

// Registry implements Context as an append-only ordered slice.
//
// It is not safe for concurrent use. Callers sharing a registry between
// goroutines must serialize access themselves.
type Registry[V any] struct {
	items []V
}

// Option configures the Registry.
type Option func(*options)

type options struct {
	capacity int
}

// WithCapacity preallocates room for n variants.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// New creates an empty registry for variant type V.
func New[V any](opts ...Option) *Registry[V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[V]{items: make([]V, 0, o.capacity)}
}

// Register appends item after every previously registered variant.
func (r *Registry[V]) Register(item V) {
	r.items = append(r.items, item)
}

// RegisterAny appends item when it converts to V.
func (r *Registry[V]) RegisterAny(item any) error {
	v, ok := item.(V)
	if !ok {
		var zero V
		return fmt.Errorf("%w: %T is not a %T", ErrTypeMismatch, item, zero)
	}
	r.Register(v)
	return nil
}

// Len returns the number of registered variants.
func (r *Registry[V]) Len() int {
	return len(r.items)
}

// All iterates every variant in insertion order.
func (r *Registry[V]) All() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		for i, item := range r.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Get returns copies of every registered payload of kind K, in insertion
// order. Variants are stored as *K; other kinds are skipped. The result is
// never nil.
func Get[K any, V any](r *Registry[V]) []K {
	out := make([]K, 0)
	for _, item := range r.items {
		if p, ok := any(item).(*K); ok && p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// GetMut returns pointers to every registered payload of kind K, in insertion
// order. Writes through them are seen by later Get calls.
func GetMut[K any, V any](r *Registry[V]) []*K {
	out := make([]*K, 0)
	for _, item := range r.items {
		if p, ok := any(item).(*K); ok && p != nil {
			out = append(out, p)
		}
	}
	return out
}

var _ Context[any] = (*Registry[any])(nil)
