// Package plugin discovers native plugin libraries, binds their entry points
// and runs them against a host registry.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unsafe"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/reglet-dev/native-host-sdk/abi"
	"github.com/reglet-dev/native-host-sdk/plugin/entities"
	"github.com/reglet-dev/native-host-sdk/plugin/ports"
	"github.com/reglet-dev/native-host-sdk/plugin/services"
	"github.com/reglet-dev/native-host-sdk/plugin/values"
)

// DefaultIncludePattern matches every file name.
const DefaultIncludePattern = "*"

// Loader orchestrates the discover, bind and run steps.
// It runs everything on the calling goroutine.
type Loader struct {
	opener    ports.LibraryOpener
	observer  ports.LoadObserver
	integrity *services.IntegrityService
	logger    *slog.Logger
	patterns  []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// NewLoader creates a loader that maps libraries with opener.
func NewLoader(opener ports.LibraryOpener, opts ...LoaderOption) (*Loader, error) {
	l := &Loader{
		opener:   opener,
		observer: ports.NopObserver{},
		logger:   slog.Default(),
		patterns: []string{DefaultIncludePattern},
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.opener == nil {
		return nil, errors.New("library opener is required")
	}
	for _, p := range l.patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
	}
	return l, nil
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// WithObserver sets the receiver of lifecycle events.
func WithObserver(o ports.LoadObserver) LoaderOption {
	return func(l *Loader) { l.observer = o }
}

// WithIntegrity verifies each library against a lockfile before opening it.
func WithIntegrity(s *services.IntegrityService) LoaderOption {
	return func(l *Loader) { l.integrity = s }
}

// WithIncludePatterns restricts discovery to file names matching any of the
// given doublestar patterns, e.g. "*.so". An empty list keeps the default.
func WithIncludePatterns(patterns ...string) LoaderOption {
	return func(l *Loader) {
		if len(patterns) > 0 {
			l.patterns = patterns
		}
	}
}

// Discover opens every regular file in dir whose name matches the include
// patterns, in lexical order. Any file that fails to open fails the whole
// call; no partial list is returned.
func (l *Loader) Discover(ctx context.Context, dir string) ([]*entities.Plugin, error) {
	plugins, err := l.discover(ctx, dir)
	l.observer.Discovered(dir, len(plugins), err)
	return plugins, err
}

func (l *Loader) discover(ctx context.Context, dir string) ([]*entities.Plugin, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", entities.ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("reading plugin directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", entities.ErrNotADirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading plugin directory %s: %w", dir, err)
	}

	plugins := make([]*entities.Plugin, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if !isRegularFile(entry, path) || !l.included(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, err := l.open(ctx, path)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, p)
	}

	l.logger.DebugContext(ctx, "discovered plugin libraries", "dir", dir, "count", len(plugins))
	return plugins, nil
}

func (l *Loader) open(ctx context.Context, path string) (*entities.Plugin, error) {
	var digest values.Digest
	if l.integrity != nil {
		d, err := l.integrity.Verify(path)
		if err != nil {
			return nil, err
		}
		digest = d
	}

	lib, err := l.opener.Open(ctx, path)
	if err != nil {
		return nil, &entities.LibraryOpenError{Path: path, Err: err}
	}

	p := entities.NewPlugin(lib)
	p.SetDigest(digest)
	return p, nil
}

func (l *Loader) included(name string) bool {
	for _, pattern := range l.patterns {
		// Patterns were validated in NewLoader.
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func isRegularFile(entry fs.DirEntry, path string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Bind resolves all four entry points of an opened plugin and reads its
// metadata. Both metadata strings are released through the plugin's own
// free_string exactly once, whether or not they decode.
func (l *Loader) Bind(ctx context.Context, p *entities.Plugin) error {
	err := l.bind(p)
	l.observer.Bound(p.Path(), err)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to bind plugin", "path", p.Path(), "error", err)
		return err
	}
	l.logger.DebugContext(ctx, "plugin bound",
		"plugin", p.Metadata().ID(),
		"author", p.Metadata().Author(),
		"path", p.Path())
	return nil
}

func (l *Loader) bind(p *entities.Plugin) error {
	exports, err := bindExports(p.Library())
	if err != nil {
		return err
	}

	metadata, err := readMetadata(exports)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Path(), err)
	}

	return p.Bind(exports, metadata)
}

func bindExports(lib abi.Library) (abi.Exports, error) {
	var ex abi.Exports
	for _, name := range abi.Symbols {
		sym, err := lib.Lookup(name)
		if err != nil {
			return abi.Exports{}, &entities.MissingSymbolError{Name: name, Path: lib.Path(), Err: err}
		}

		var ok bool
		switch name {
		case abi.SymbolGetAuthor:
			ex.GetAuthor, ok = sym.(abi.StringFunc)
			ok = ok && ex.GetAuthor != nil
		case abi.SymbolGetID:
			ex.GetID, ok = sym.(abi.StringFunc)
			ok = ok && ex.GetID != nil
		case abi.SymbolLoadPlugin:
			ex.LoadPlugin, ok = sym.(abi.LoadFunc)
			ok = ok && ex.LoadPlugin != nil
		case abi.SymbolFreeString:
			ex.FreeString, ok = sym.(abi.FreeFunc)
			ok = ok && ex.FreeString != nil
		}
		if !ok {
			return abi.Exports{}, &entities.MissingSymbolError{
				Name: name,
				Path: lib.Path(),
				Err:  fmt.Errorf("unexpected signature %T", sym),
			}
		}
	}
	return ex, nil
}

func readMetadata(ex abi.Exports) (values.PluginMetadata, error) {
	author, authorErr := takeString(ex.GetAuthor, ex.FreeString)
	id, idErr := takeString(ex.GetID, ex.FreeString)

	if authorErr != nil {
		return values.PluginMetadata{}, fmt.Errorf("%w: %s: %w", entities.ErrMetadataDecode, abi.SymbolGetAuthor, authorErr)
	}
	if idErr != nil {
		return values.PluginMetadata{}, fmt.Errorf("%w: %s: %w", entities.ErrMetadataDecode, abi.SymbolGetID, idErr)
	}

	metadata, err := values.NewPluginMetadata(author, id)
	if err != nil {
		return values.PluginMetadata{}, fmt.Errorf("%w: %w", entities.ErrMetadataDecode, err)
	}
	return metadata, nil
}

// takeString copies a plugin-owned string and hands it back to free.
func takeString(get abi.StringFunc, free abi.FreeFunc) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin panicked: %v", r)
		}
	}()

	p := get()
	if p == nil {
		return "", abi.ErrNullString
	}
	defer free(p)
	return abi.GoString(p)
}

// Run invokes the plugin's load_plugin with target as the opaque context.
// Registrations made before a failure are kept.
func (l *Loader) Run(ctx context.Context, p *entities.Plugin, target any) error {
	load, err := p.LoadFunc()
	if err != nil {
		return err
	}

	id := p.Metadata().ID()
	start := time.Now()
	code := callLoad(load, abi.Box(target))
	elapsed := time.Since(start)

	if code != int32(abi.StatusOK) {
		loadErr := &entities.PluginLoadError{ID: id, Code: code}
		if err := p.MarkFailed(loadErr); err != nil {
			return err
		}
		l.observer.Loaded(id, elapsed, loadErr)
		l.logger.ErrorContext(ctx, "plugin load failed",
			"plugin", id,
			"path", p.Path(),
			"code", code,
			"status", abi.Status(code).String())
		return loadErr
	}

	if err := p.MarkLoaded(); err != nil {
		return err
	}
	l.observer.Loaded(id, elapsed, nil)
	l.logger.InfoContext(ctx, "plugin loaded",
		"plugin", id,
		"author", p.Metadata().Author(),
		"path", p.Path(),
		"elapsed", elapsed)
	return nil
}

func callLoad(load abi.LoadFunc, ctx unsafe.Pointer) (code int32) {
	defer func() {
		if r := recover(); r != nil {
			code = int32(abi.StatusPanicked)
		}
	}()
	return load(ctx)
}

// LoadDirectory discovers, binds and runs every plugin in dir.
//
// Discovery or binding errors abort before any plugin runs. A failing
// load_plugin disables only that plugin; the rest still run and every
// failure is joined into the returned error. The returned slice holds all
// handles, failed ones included, and must be kept for as long as anything
// they registered is in use.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, target any) ([]*entities.Plugin, error) {
	plugins, err := l.Discover(ctx, dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(plugins))
	for _, p := range plugins {
		if err := l.Bind(ctx, p); err != nil {
			return nil, err
		}
		id := p.Metadata().ID()
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: %s provided by %s and %s", entities.ErrDuplicatePlugin, id, prev, p.Path())
		}
		seen[id] = p.Path()
	}

	var errs []error
	for _, p := range plugins {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := l.Run(ctx, p, target); err != nil {
			errs = append(errs, err)
		}
	}
	return plugins, errors.Join(errs...)
}
