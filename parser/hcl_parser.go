package parser

import (
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// HCLDescriptorParser implements DescriptorParser for HCL native syntax.
type HCLDescriptorParser struct{}

// NewHCLDescriptorParser creates a new HCLDescriptorParser.
func NewHCLDescriptorParser() DescriptorParser {
	return &HCLDescriptorParser{}
}

// Parse decodes HCL attributes into a Descriptor.
func (p *HCLDescriptorParser) Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	// The file name only selects the native syntax and labels diagnostics.
	if err := hclsimple.Decode("plugin.hcl", data, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
