package parser

// DescriptorParser parses raw descriptor bytes into a Descriptor.
type DescriptorParser interface {
	// Parse unmarshals descriptor bytes. Unknown keys are rejected.
	Parse(data []byte) (*Descriptor, error)
}
