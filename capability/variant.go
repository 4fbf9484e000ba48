// Package capability defines the capability kinds plugins register into the
// host. The set of kinds is closed: only types declared here satisfy Variant.
package capability

import (
	"fmt"

	"github.com/reglet-dev/native-host-sdk/registry"
)

// Registry is the registry type hosts hand to capability plugins.
type Registry = registry.Registry[Variant]

// NewRegistry creates an empty capability registry.
func NewRegistry(opts ...registry.Option) *Registry {
	return registry.New[Variant](opts...)
}

// Kind names a capability variant tag.
type Kind string

const (
	KindUpgrade Kind = "upgrade"
)

// Variant is one registered capability object. Each kind is a pointer to its
// payload, so registries hand out stable addresses for in-place mutation.
type Variant interface {
	Kind() Kind
	variant()
}

// KindOf returns the tag of v, or an empty Kind for nil.
func KindOf(v Variant) Kind {
	if v == nil {
		return ""
	}
	return v.Kind()
}

// Describe renders a one-line summary of v for logs and listings.
func Describe(v Variant) string {
	switch p := v.(type) {
	case *Upgrade:
		return p.String()
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%s variant", v.Kind())
	}
}
