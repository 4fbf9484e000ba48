package values

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxPluginIDLen bounds plugin identifiers.
const MaxPluginIDLen = 128

// PluginMetadata is what a plugin reports about itself through get_author
// and get_id. Fixed once the plugin is bound.
type PluginMetadata struct {
	author string
	id     string
}

// NewPluginMetadata validates and creates plugin metadata.
// The id must be non-empty, at most MaxPluginIDLen bytes, and free of
// whitespace and control characters. The author is free-form.
func NewPluginMetadata(author, id string) (PluginMetadata, error) {
	if err := validatePluginID(id); err != nil {
		return PluginMetadata{}, err
	}
	return PluginMetadata{author: author, id: id}, nil
}

func validatePluginID(id string) error {
	if id == "" {
		return fmt.Errorf("plugin id cannot be empty")
	}
	if len(id) > MaxPluginIDLen {
		return fmt.Errorf("plugin id too long (max %d bytes)", MaxPluginIDLen)
	}
	if i := strings.IndexFunc(id, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}); i >= 0 {
		return fmt.Errorf("invalid plugin id %q: contains whitespace or control character", id)
	}
	return nil
}

// Author returns who published the plugin.
func (m PluginMetadata) Author() string {
	return m.author
}

// ID returns the stable plugin identifier.
func (m PluginMetadata) ID() string {
	return m.id
}

// IsZero reports whether m was never set.
func (m PluginMetadata) IsZero() bool {
	return m.id == ""
}

// String renders "id by author".
func (m PluginMetadata) String() string {
	if m.author == "" {
		return m.id
	}
	return m.id + " by " + m.author
}
