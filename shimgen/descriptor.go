package shimgen

import (
	"github.com/reglet-dev/native-host-sdk/parser"
	"github.com/reglet-dev/native-host-sdk/validation"
)

// LoadDescriptor parses the descriptor at path and validates it against the
// descriptor schema.
func LoadDescriptor(path string) (*parser.Descriptor, error) {
	d, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}

	v, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	res, err := v.Validate(d)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return d, nil
}
