package shimgen_test

import (
	"go/ast"
	goparser "go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reglet-dev/native-host-sdk/parser"
	"github.com/reglet-dev/native-host-sdk/plugin"
	"github.com/reglet-dev/native-host-sdk/shimgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upgradePlugin = `package main

import (
	"errors"

	"github.com/reglet-dev/native-host-sdk/capability"
)

type UpgradePlugin struct{}

func (UpgradePlugin) Author() string { return "tester" }

func (UpgradePlugin) ID() string { return "upgrades" }

func (p *UpgradePlugin) Load(reg *capability.Registry) error {
	if reg == nil {
		return errors.New("nil registry")
	}
	return nil
}

func main() {}
`

const secondPlugin = `package main

import "github.com/reglet-dev/native-host-sdk/capability"

type OtherPlugin struct{}

func (OtherPlugin) Author() string { return "tester" }
func (OtherPlugin) ID() string     { return "other" }
func (OtherPlugin) Load(*capability.Registry) error { return nil }
`

func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600))
	}
	return dir
}

func newGenerator() *shimgen.Generator {
	return shimgen.NewGenerator(shimgen.WithLogger(plugin.NewTestLogger()))
}

func TestGenerate(t *testing.T) {
	dir := writePackage(t, map[string]string{"plugin.go": upgradePlugin})

	src, err := newGenerator().Generate(dir, &parser.Descriptor{Version: "1.2.0"})
	require.NoError(t, err)

	out := string(src)
	assert.True(t, strings.HasPrefix(out, "// Code generated by shimgen. DO NOT EDIT.\n// Plugin version: 1.2.0\n\npackage main\n"))
	assert.Contains(t, out, `"github.com/reglet-dev/native-host-sdk/abi/export"`)
	assert.Contains(t, out, `"github.com/reglet-dev/native-host-sdk/capability"`)
	assert.Contains(t, out, "var _ export.Plugin[*capability.Registry] = (*UpgradePlugin)(nil)")
	assert.Contains(t, out, "return export.Load(ctx, new(UpgradePlugin).Load)")

	f, err := goparser.ParseFile(token.NewFileSet(), shimgen.DefaultOutput, src, goparser.ParseComments)
	require.NoError(t, err)
	assert.True(t, ast.IsGenerated(f))

	var funcs []string
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			funcs = append(funcs, fn.Name.Name)
		}
	}
	assert.Equal(t, []string{"GetAuthor", "GetID", "LoadPlugin", "FreeString"}, funcs)
}

func TestGenerate_NoVersionHeader(t *testing.T) {
	dir := writePackage(t, map[string]string{"plugin.go": upgradePlugin})

	src, err := newGenerator().Generate(dir, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(src), "// Code generated by shimgen. DO NOT EDIT.\n\npackage main\n"))
}

func TestWriteFile_Rerun(t *testing.T) {
	dir := writePackage(t, map[string]string{"plugin.go": upgradePlugin})
	g := newGenerator()

	path, err := g.WriteFile(dir, shimgen.DefaultOutput, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, shimgen.DefaultOutput), path)

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// The generated file declares the entry points, not the plugin, so a
	// second run must ignore it.
	_, err = g.WriteFile(dir, shimgen.DefaultOutput, nil)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		desc  *parser.Descriptor
		want  error
	}{
		{
			name:  "no sources",
			files: map[string]string{"README.md": "plugin"},
			want:  shimgen.ErrNoSources,
		},
		{
			name:  "no plugin",
			files: map[string]string{"main.go": "package main\n\ntype Thing struct{}\n\nfunc (Thing) ID() string { return \"\" }\n"},
			want:  shimgen.ErrNoPlugin,
		},
		{
			name:  "ambiguous",
			files: map[string]string{"a.go": upgradePlugin, "b.go": secondPlugin},
			want:  shimgen.ErrAmbiguousPlugin,
		},
		{
			name:  "named plugin missing",
			files: map[string]string{"plugin.go": upgradePlugin},
			desc:  &parser.Descriptor{Plugin: "Missing"},
			want:  shimgen.ErrPluginNotFound,
		},
		{
			name:  "registry mismatch",
			files: map[string]string{"plugin.go": upgradePlugin},
			desc:  &parser.Descriptor{Registry: "capability.Registry"},
			want:  shimgen.ErrRegistryMismatch,
		},
		{
			name:  "package mismatch",
			files: map[string]string{"plugin.go": upgradePlugin},
			desc:  &parser.Descriptor{Package: "upgrades"},
			want:  shimgen.ErrPackageMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writePackage(t, tt.files)
			_, err := newGenerator().Generate(dir, tt.desc)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerate_DescriptorSelectsPlugin(t *testing.T) {
	dir := writePackage(t, map[string]string{"a.go": upgradePlugin, "b.go": secondPlugin})

	src, err := newGenerator().Generate(dir, &parser.Descriptor{
		Plugin:   "OtherPlugin",
		Registry: "* capability.Registry",
	})
	require.NoError(t, err)
	assert.Contains(t, string(src), "(*OtherPlugin)(nil)")
	assert.NotContains(t, string(src), "UpgradePlugin")
}

func TestGenerate_Imports(t *testing.T) {
	t.Run("renamed import is kept", func(t *testing.T) {
		dir := writePackage(t, map[string]string{"plugin.go": `package main

import caps "github.com/reglet-dev/native-host-sdk/capability"

type P struct{}

func (P) Author() string { return "a" }
func (P) ID() string     { return "p" }
func (P) Load(r *caps.Registry) error { return nil }
`})
		src, err := newGenerator().Generate(dir, nil)
		require.NoError(t, err)
		assert.Contains(t, string(src), `caps "github.com/reglet-dev/native-host-sdk/capability"`)
		assert.Contains(t, string(src), "export.Plugin[*caps.Registry]")
	})

	registryPkg := map[string]string{"plugin.go": `package main

import (
	"example.com/game/registries"
	"github.com/reglet-dev/native-host-sdk/capability"
)

type P struct{}

func (P) Author() string { return "a" }
func (P) ID() string     { return "p" }
func (P) Load(r *store.Registry[capability.Variant]) error { return nil }

var _ = registries.Version
`}

	t.Run("unresolved qualifier", func(t *testing.T) {
		dir := writePackage(t, registryPkg)
		_, err := newGenerator().Generate(dir, nil)
		assert.ErrorIs(t, err, shimgen.ErrUnresolvedImport)
	})

	t.Run("descriptor provides qualifier", func(t *testing.T) {
		dir := writePackage(t, registryPkg)
		src, err := newGenerator().Generate(dir, &parser.Descriptor{
			Imports: []string{"store example.com/game/registries", "unsafe"},
		})
		require.NoError(t, err)
		out := string(src)
		assert.Contains(t, out, `store "example.com/game/registries"`)
		assert.Contains(t, out, `"github.com/reglet-dev/native-host-sdk/capability"`)
		assert.Equal(t, 1, strings.Count(out, `"unsafe"`))
	})
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"github.com/reglet-dev/native-host-sdk/capability": "capability",
		"github.com/bmatcuk/doublestar/v4":                 "doublestar",
		"gopkg.in/yaml.v3":                                 "yaml",
		"github.com/goccy/go-yaml":                         "yaml",
		"github.com/santhosh-tekuri/jsonschema/v5":         "jsonschema",
		"example.com/my-pkg":                               "mypkg",
	}
	for path, want := range tests {
		assert.Equal(t, want, shimgen.PackageName(path), path)
	}
}

func TestScan(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"a.go":      upgradePlugin,
		"b.go":      secondPlugin,
		"a_test.go": "package main\n\ntype TestOnly struct{}\n",
	})

	pkg, err := shimgen.Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, "main", pkg.Name)
	assert.Equal(t, []string{"OtherPlugin", "UpgradePlugin"}, pkg.Types)
	require.Len(t, pkg.Candidates, 2)

	c, ok := pkg.Candidate("UpgradePlugin")
	require.True(t, ok)
	assert.Equal(t, "*capability.Registry", c.Registry)
	assert.Equal(t, []shimgen.Import{{Path: "github.com/reglet-dev/native-host-sdk/capability"}}, c.Imports)
	assert.Empty(t, c.Unresolved)
}

func TestScan_MixedPackages(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"a.go": upgradePlugin,
		"b.go": "package other\n",
	})
	_, err := shimgen.Scan(dir)
	assert.Error(t, err)
}

func TestGenerate_ExamplePluginUpToDate(t *testing.T) {
	dir := filepath.Join("..", "examples", "upgrade3")
	d, err := shimgen.LoadDescriptor(filepath.Join(dir, "plugin.yaml"))
	require.NoError(t, err)

	src, err := newGenerator().Generate(dir, d)
	require.NoError(t, err)

	committed, err := os.ReadFile(filepath.Join(dir, shimgen.DefaultOutput))
	require.NoError(t, err)
	assert.Equal(t, string(committed), string(src), "run go generate in examples/upgrade3")
}
