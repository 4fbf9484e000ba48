package shimgen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Import is one import the generated file needs. Name is set only for
// explicitly renamed imports.
type Import struct {
	Name string
	Path string
}

// Candidate is a type implementing Author() string, ID() string and
// Load(R) error.
type Candidate struct {
	Name     string
	Registry string
	Imports  []Import

	// Unresolved lists package qualifiers of Registry that no import of the
	// declaring file could be matched to.
	Unresolved []string
}

// Package is the result of scanning one plugin package directory.
type Package struct {
	Name       string
	Dir        string
	Candidates []Candidate
	Types      []string
}

// Candidate returns the candidate with the given name.
func (p *Package) Candidate(name string) (Candidate, bool) {
	for _, c := range p.Candidates {
		if c.Name == name {
			return c, true
		}
	}
	return Candidate{}, false
}

type methodSet struct {
	imports  []*ast.ImportSpec
	registry ast.Expr
	author   bool
	id       bool
}

// Scan parses the non-test, non-generated Go files in dir and returns the
// types that can serve as the plugin root.
func Scan(dir string) (*Package, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading package directory: %w", err)
	}

	pkg := &Package{Dir: dir}
	fset := token.NewFileSet()
	declared := make(map[string]bool)
	methods := make(map[string]*methodSet)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}

		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		if ast.IsGenerated(file) {
			continue
		}

		switch {
		case pkg.Name == "":
			pkg.Name = file.Name.Name
		case pkg.Name != file.Name.Name:
			return nil, fmt.Errorf("%s: found packages %s and %s", dir, pkg.Name, file.Name.Name)
		}

		collect(file, declared, methods)
	}

	if pkg.Name == "" {
		return nil, fmt.Errorf("%w in %s", ErrNoSources, dir)
	}

	for name := range declared {
		pkg.Types = append(pkg.Types, name)
		ms := methods[name]
		if ms == nil || !ms.author || !ms.id || ms.registry == nil {
			continue
		}
		imports, unresolved := resolveImports(ms.registry, ms.imports)
		pkg.Candidates = append(pkg.Candidates, Candidate{
			Name:       name,
			Registry:   types.ExprString(ms.registry),
			Imports:    imports,
			Unresolved: unresolved,
		})
	}
	sort.Strings(pkg.Types)
	sort.Slice(pkg.Candidates, func(i, j int) bool {
		return pkg.Candidates[i].Name < pkg.Candidates[j].Name
	})
	return pkg, nil
}

func collect(file *ast.File, declared map[string]bool, methods map[string]*methodSet) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*ast.TypeSpec)
				// Generic types cannot be constructed without type arguments.
				if ts.TypeParams == nil {
					declared[ts.Name.Name] = true
				}
			}
		case *ast.FuncDecl:
			recv := receiverName(d)
			if recv == "" {
				continue
			}
			ms := methods[recv]
			if ms == nil {
				ms = &methodSet{}
				methods[recv] = ms
			}
			switch {
			case d.Name.Name == "Author" && returnsOnly(d.Type, "string"):
				ms.author = true
			case d.Name.Name == "ID" && returnsOnly(d.Type, "string"):
				ms.id = true
			case d.Name.Name == "Load":
				if param := loadParam(d.Type); param != nil {
					ms.registry = param
					ms.imports = file.Imports
				}
			}
		}
	}
}

func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) != 1 {
		return ""
	}
	expr := fn.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if id, ok := expr.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

func returnsOnly(ft *ast.FuncType, result string) bool {
	if ft.Params.NumFields() != 0 || ft.Results.NumFields() != 1 {
		return false
	}
	id, ok := ft.Results.List[0].Type.(*ast.Ident)
	return ok && id.Name == result
}

// loadParam returns the parameter type of Load(R) error, or nil when fn has
// another shape.
func loadParam(ft *ast.FuncType) ast.Expr {
	if ft.Params.NumFields() != 1 || ft.Results.NumFields() != 1 {
		return nil
	}
	if id, ok := ft.Results.List[0].Type.(*ast.Ident); !ok || id.Name != "error" {
		return nil
	}
	typ := ft.Params.List[0].Type
	if _, ok := typ.(*ast.Ellipsis); ok {
		return nil
	}
	return typ
}

func resolveImports(expr ast.Expr, specs []*ast.ImportSpec) ([]Import, []string) {
	byName := make(map[string]Import)
	for _, spec := range specs {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		if spec.Name != nil {
			byName[spec.Name.Name] = Import{Name: spec.Name.Name, Path: p}
			continue
		}
		if _, ok := byName[PackageName(p)]; !ok {
			byName[PackageName(p)] = Import{Path: p}
		}
	}

	var imports []Import
	var unresolved []string
	seen := make(map[string]bool)
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		id, ok := sel.X.(*ast.Ident)
		if !ok || seen[id.Name] {
			return true
		}
		seen[id.Name] = true
		if imp, ok := byName[id.Name]; ok {
			imports = append(imports, imp)
		} else {
			unresolved = append(unresolved, id.Name)
		}
		return true
	})
	return imports, unresolved
}

// PackageName guesses the package name an import path declares: the last
// element without a major version suffix or "go-" prefix.
func PackageName(importPath string) string {
	base := path.Base(importPath)
	if isMajorVersion(base) {
		base = path.Base(path.Dir(importPath))
	}
	if i := strings.Index(base, ".v"); i > 0 && isMajorVersion(base[i+1:]) {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")
	return strings.ReplaceAll(base, "-", "")
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}
