package validation

import "github.com/reglet-dev/native-host-sdk/parser"

// DescriptorValidator validates plugin descriptors before generation.
type DescriptorValidator interface {
	// Validate checks the descriptor against the descriptor schema and the
	// value rules a schema cannot express.
	Validate(d *parser.Descriptor) (*ValidationResult, error)
}
