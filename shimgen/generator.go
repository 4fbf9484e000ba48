// Package shimgen generates the four exported entry points a plugin library
// needs from its Go source and an optional descriptor.
package shimgen

import (
	_ "embed"
	"fmt"
	"go/parser"
	"go/types"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/imports"

	desc "github.com/reglet-dev/native-host-sdk/parser"
	"github.com/reglet-dev/native-host-sdk/template"
)

// DefaultOutput is the file name written next to the plugin sources.
const DefaultOutput = "zz_exports.go"

// ExportPackage is the import path of the runtime the generated code calls.
const ExportPackage = "github.com/reglet-dev/native-host-sdk/abi/export"

//go:embed shim.go.tmpl
var shimTemplate []byte

// Target is a fully resolved generation request.
type Target struct {
	Package  string
	Plugin   string
	Registry string
	Version  string
	Imports  []Import
}

// Generator renders export shims.
type Generator struct {
	engine template.TemplateEngine
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithTemplateEngine replaces the engine used to render the shim template.
func WithTemplateEngine(engine template.TemplateEngine) Option {
	return func(g *Generator) {
		g.engine = engine
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		engine: template.NewTextEngine(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate scans dir, reconciles it with d (which may be nil) and returns
// the formatted shim source.
func (g *Generator) Generate(dir string, d *desc.Descriptor) ([]byte, error) {
	pkg, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("scanned plugin package",
		"dir", dir,
		"package", pkg.Name,
		"candidates", len(pkg.Candidates))

	target, err := Resolve(pkg, d)
	if err != nil {
		return nil, err
	}
	return g.Render(target)
}

// WriteFile generates the shim for dir and writes it to out. A relative out
// is taken relative to dir.
func (g *Generator) WriteFile(dir, out string, d *desc.Descriptor) (string, error) {
	src, err := g.Generate(dir, d)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(dir, out)
	}
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return "", fmt.Errorf("writing shim: %w", err)
	}
	g.logger.Info("wrote export shim", "path", out)
	return out, nil
}

// Render produces gofmt-formatted source for t.
func (g *Generator) Render(t *Target) ([]byte, error) {
	imps := make([]map[string]any, len(t.Imports))
	for i, imp := range t.Imports {
		imps[i] = map[string]any{"Name": imp.Name, "Path": imp.Path}
	}

	src, err := g.engine.Render(shimTemplate, map[string]any{
		"Package":  t.Package,
		"Plugin":   t.Plugin,
		"Registry": t.Registry,
		"Version":  t.Version,
		"Export":   ExportPackage,
		"Imports":  imps,
	})
	if err != nil {
		return nil, err
	}

	formatted, err := imports.Process(DefaultOutput, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting shim: %w", err)
	}
	return formatted, nil
}

// Resolve picks the plugin type and registry expression from pkg, checked
// against whatever d declares.
func Resolve(pkg *Package, d *desc.Descriptor) (*Target, error) {
	if d == nil {
		d = &desc.Descriptor{}
	}
	if d.Package != "" && d.Package != pkg.Name {
		return nil, fmt.Errorf("%w: descriptor says %s, %s declares %s", ErrPackageMismatch, d.Package, pkg.Dir, pkg.Name)
	}

	c, err := pickCandidate(pkg, d.Plugin)
	if err != nil {
		return nil, err
	}

	if d.Registry != "" {
		want, err := normalizeExpr(d.Registry)
		if err != nil {
			return nil, fmt.Errorf("descriptor registry %q: %w", d.Registry, err)
		}
		if want != c.Registry {
			return nil, fmt.Errorf("%w: descriptor says %s, %s.Load takes %s", ErrRegistryMismatch, want, c.Name, c.Registry)
		}
	}

	imps, err := mergeImports(c, d.Imports)
	if err != nil {
		return nil, err
	}

	return &Target{
		Package:  pkg.Name,
		Plugin:   c.Name,
		Registry: c.Registry,
		Version:  d.Version,
		Imports:  imps,
	}, nil
}

func pickCandidate(pkg *Package, name string) (Candidate, error) {
	if name != "" {
		c, ok := pkg.Candidate(name)
		if !ok {
			return Candidate{}, fmt.Errorf("%w: %s in %s does not declare Author() string, ID() string and Load(R) error",
				ErrPluginNotFound, name, pkg.Dir)
		}
		return c, nil
	}

	switch len(pkg.Candidates) {
	case 0:
		return Candidate{}, fmt.Errorf("%w in %s", ErrNoPlugin, pkg.Dir)
	case 1:
		return pkg.Candidates[0], nil
	default:
		names := make([]string, len(pkg.Candidates))
		for i, c := range pkg.Candidates {
			names[i] = c.Name
		}
		return Candidate{}, fmt.Errorf("%w: %s; name one in the descriptor", ErrAmbiguousPlugin, strings.Join(names, ", "))
	}
}

func normalizeExpr(s string) (string, error) {
	expr, err := parser.ParseExpr(s)
	if err != nil {
		return "", err
	}
	return types.ExprString(expr), nil
}

// mergeImports adds descriptor imports to the scanned ones. Every qualifier
// the scan could not match must be provided by a descriptor import.
func mergeImports(c Candidate, extra []string) ([]Import, error) {
	byPath := make(map[string]Import)
	for _, imp := range c.Imports {
		if !preset(imp.Path) {
			byPath[imp.Path] = imp
		}
	}
	provided := make(map[string]bool)
	for _, spec := range extra {
		imp := parseImport(spec)
		if preset(imp.Path) {
			continue
		}
		if _, ok := byPath[imp.Path]; !ok {
			byPath[imp.Path] = imp
		}
		if imp.Name != "" {
			provided[imp.Name] = true
		} else {
			provided[PackageName(imp.Path)] = true
		}
	}

	for _, q := range c.Unresolved {
		if !provided[q] {
			return nil, fmt.Errorf("%w: %s in %s; add its import path to the descriptor", ErrUnresolvedImport, q, c.Registry)
		}
	}

	out := make([]Import, 0, len(byPath))
	for _, imp := range byPath {
		out = append(out, imp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// preset reports whether the shim template already imports path.
func preset(path string) bool {
	return path == "unsafe" || path == ExportPackage
}

// parseImport reads a descriptor import, either "path" or "name path".
func parseImport(spec string) Import {
	spec = strings.TrimSpace(spec)
	if name, p, ok := strings.Cut(spec, " "); ok {
		return Import{Name: name, Path: strings.TrimSpace(p)}
	}
	return Import{Path: spec}
}
