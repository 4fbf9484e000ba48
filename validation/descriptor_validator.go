// Package validation checks plugin descriptors against a JSON Schema
// reflected from parser.Descriptor.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"go/parser"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v5"

	desc "github.com/reglet-dev/native-host-sdk/parser"
)

const schemaURL = "descriptor.schema.json"

// SchemaValidator implements DescriptorValidator.
type SchemaValidator struct {
	schema *jsv.Schema
	raw    []byte
}

// NewSchemaValidator reflects and compiles the descriptor schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	raw, err := Schema()
	if err != nil {
		return nil, err
	}

	c := jsv.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("adding descriptor schema: %w", err)
	}
	schema, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling descriptor schema: %w", err)
	}
	return &SchemaValidator{schema: schema, raw: raw}, nil
}

// Schema returns the descriptor JSON Schema, indented.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		Anonymous:                  true,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(&desc.Descriptor{})
	s.Title = "Plugin descriptor"

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal descriptor schema: %w", err)
	}
	return b, nil
}

// Raw returns the compiled schema document.
func (v *SchemaValidator) Raw() []byte {
	return v.raw
}

// Validate implements DescriptorValidator.
func (v *SchemaValidator) Validate(d *desc.Descriptor) (*ValidationResult, error) {
	if d == nil {
		return nil, errors.New("descriptor is nil")
	}

	doc, err := toDocument(d)
	if err != nil {
		return nil, err
	}

	res := &ValidationResult{Valid: true}
	if err := v.schema.Validate(doc); err != nil {
		var verr *jsv.ValidationError
		if !errors.As(err, &verr) {
			return nil, fmt.Errorf("validating descriptor: %w", err)
		}
		for _, leaf := range leaves(verr) {
			res.add(leaf.InstanceLocation, leaf.Message)
		}
	}

	if d.Registry != "" {
		if _, err := parser.ParseExpr(d.Registry); err != nil {
			res.add("/registry", fmt.Sprintf("not a Go type expression: %v", err))
		}
	}
	if d.Version != "" {
		if _, err := semver.NewVersion(d.Version); err != nil {
			res.add("/version", fmt.Sprintf("not a semantic version: %v", err))
		}
	}

	sort.SliceStable(res.Errors, func(i, j int) bool {
		return res.Errors[i].Field < res.Errors[j].Field
	})
	return res, nil
}

// toDocument converts d into the generic form the validator walks.
func toDocument(d *desc.Descriptor) (any, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding descriptor: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decoding descriptor: %w", err)
	}
	return doc, nil
}

func leaves(e *jsv.ValidationError) []*jsv.ValidationError {
	if len(e.Causes) == 0 {
		return []*jsv.ValidationError{e}
	}
	var out []*jsv.ValidationError
	for _, c := range e.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}

var _ DescriptorValidator = (*SchemaValidator)(nil)
