package parser

import (
	"bytes"
	"encoding/json"
)

// JSONDescriptorParser implements DescriptorParser for JSON.
type JSONDescriptorParser struct{}

// NewJSONDescriptorParser creates a new JSONDescriptorParser.
func NewJSONDescriptorParser() DescriptorParser {
	return &JSONDescriptorParser{}
}

// Parse unmarshals JSON bytes into a Descriptor.
func (p *JSONDescriptorParser) Parse(data []byte) (*Descriptor, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var d Descriptor
	if err := dec.Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}
