// Package parser reads plugin descriptors, the declarative input of the
// export-shim generator.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for descriptor files with an unknown
// extension.
var ErrUnsupportedFormat = errors.New("unsupported descriptor format")

// DescriptorNames lists the file names looked up when no descriptor path is
// given, in order of preference.
var DescriptorNames = []string{"plugin.yaml", "plugin.yml", "plugin.json", "plugin.hcl"}

// Descriptor declares which type of a plugin package implements the plugin
// and which registry type its Load method receives. Empty fields are filled
// from a scan of the package.
type Descriptor struct {
	// Plugin is the name of the struct implementing Author, ID and Load.
	Plugin string `json:"plugin,omitempty" yaml:"plugin,omitempty" hcl:"plugin,optional" jsonschema:"pattern=^[A-Za-z_][A-Za-z0-9_]*$,description=Plugin struct name"`

	// Registry is the Go type expression of the Load parameter, e.g.
	// "*capability.Registry".
	Registry string `json:"registry,omitempty" yaml:"registry,omitempty" hcl:"registry,optional" jsonschema:"minLength=1,description=Go type expression of the Load parameter"`

	// Imports are extra imports the registry expression needs, each either
	// "path" or "name path" for packages whose name differs from the last
	// path element.
	Imports []string `json:"imports,omitempty" yaml:"imports,omitempty" hcl:"imports,optional" jsonschema:"uniqueItems=true,pattern=^([A-Za-z_][A-Za-z0-9_]* )?[^\\s\"]+$,description=Imports used by the registry expression"`

	// Package is the expected Go package name of the plugin.
	Package string `json:"package,omitempty" yaml:"package,omitempty" hcl:"package,optional" jsonschema:"pattern=^[A-Za-z_][A-Za-z0-9_]*$,description=Go package name"`

	// Version is informational and must be a semantic version when set.
	Version string `json:"version,omitempty" yaml:"version,omitempty" hcl:"version,optional" jsonschema:"description=Semantic version of the plugin"`
}

// ForFile returns the parser matching the file extension of path.
func ForFile(path string) (DescriptorParser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONDescriptorParser(), nil
	case ".yaml", ".yml":
		return NewYamlDescriptorParser(), nil
	case ".hcl":
		return NewHCLDescriptorParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ParseFile reads and parses the descriptor at path.
func ParseFile(path string) (*Descriptor, error) {
	p, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}
	d, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing descriptor %s: %w", path, err)
	}
	return d, nil
}

// Find returns the first of DescriptorNames present in dir, or "" when dir
// has none.
func Find(dir string) (string, error) {
	for _, name := range DescriptorNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}
