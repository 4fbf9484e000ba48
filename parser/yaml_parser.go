package parser

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// YamlDescriptorParser implements DescriptorParser for YAML.
type YamlDescriptorParser struct{}

// NewYamlDescriptorParser creates a new YamlDescriptorParser.
func NewYamlDescriptorParser() DescriptorParser {
	return &YamlDescriptorParser{}
}

// Parse unmarshals YAML bytes into a Descriptor. An empty document yields an
// empty Descriptor.
func (p *YamlDescriptorParser) Parse(data []byte) (*Descriptor, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var d Descriptor
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &d, nil
}
