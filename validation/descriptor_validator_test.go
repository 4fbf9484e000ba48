package validation_test

import (
	"encoding/json"
	"testing"

	"github.com/reglet-dev/native-host-sdk/parser"
	"github.com/reglet-dev/native-host-sdk/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(res *validation.ValidationResult) []string {
	out := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		out = append(out, e.Field)
	}
	return out
}

func TestSchema(t *testing.T) {
	raw, err := validation.Schema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, false, doc["additionalProperties"])
	assert.NotContains(t, doc, "$id")

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"plugin", "registry", "imports", "package", "version"} {
		assert.Contains(t, props, key)
	}
}

func TestSchemaValidator_Validate(t *testing.T) {
	v, err := validation.NewSchemaValidator()
	require.NoError(t, err)

	tests := []struct {
		name   string
		desc   *parser.Descriptor
		fields []string
	}{
		{
			name: "empty descriptor",
			desc: &parser.Descriptor{},
		},
		{
			name: "complete descriptor",
			desc: &parser.Descriptor{
				Plugin:   "UpgradePlugin",
				Registry: "*registry.Registry[capability.Variant]",
				Imports: []string{
					"github.com/reglet-dev/native-host-sdk/capability",
					"github.com/reglet-dev/native-host-sdk/registry",
				},
				Package: "main",
				Version: "0.3.1",
			},
		},
		{
			name:   "plugin not an identifier",
			desc:   &parser.Descriptor{Plugin: "upgrade-plugin"},
			fields: []string{"/plugin"},
		},
		{
			name:   "registry not an expression",
			desc:   &parser.Descriptor{Registry: "*capability."},
			fields: []string{"/registry"},
		},
		{
			name:   "duplicate import",
			desc:   &parser.Descriptor{Imports: []string{"fmt", "fmt"}},
			fields: []string{"/imports"},
		},
		{
			name:   "bad version",
			desc:   &parser.Descriptor{Version: "one"},
			fields: []string{"/version"},
		},
		{
			name:   "several violations",
			desc:   &parser.Descriptor{Package: "9lives", Version: "x.y"},
			fields: []string{"/package", "/version"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.Validate(tt.desc)
			require.NoError(t, err)
			if len(tt.fields) == 0 {
				assert.True(t, res.Valid)
				assert.Empty(t, res.Errors)
				assert.NoError(t, res.Err())
				return
			}
			assert.False(t, res.Valid)
			assert.Equal(t, tt.fields, fields(res))
			assert.ErrorIs(t, res.Err(), validation.ErrInvalidDescriptor)
		})
	}

	_, err = v.Validate(nil)
	assert.Error(t, err)
}

func TestSchemaValidator_Raw(t *testing.T) {
	v, err := validation.NewSchemaValidator()
	require.NoError(t, err)

	raw, err := validation.Schema()
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(v.Raw()))
}
