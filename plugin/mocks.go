package plugin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"
	"unsafe"

	"github.com/reglet-dev/native-host-sdk/abi"
)

// MockLibrary implements abi.Library over a fixed symbol table.
type MockLibrary struct {
	Symbols map[string]any
	LibPath string
}

// Path implements abi.Library.
func (m *MockLibrary) Path() string {
	return m.LibPath
}

// Lookup returns the symbol registered under the ABI name, or an error.
func (m *MockLibrary) Lookup(symbol string) (any, error) {
	sym, ok := m.Symbols[symbol]
	if !ok {
		return nil, fmt.Errorf("symbol %s not found", symbol)
	}
	return sym, nil
}

// MockPlugin simulates a plugin's exported entry points. Strings are Go
// allocations tracked so tests can assert each one is freed exactly once.
type MockPlugin struct {
	Load   abi.LoadFunc
	live   map[unsafe.Pointer]bool
	Author string
	ID     string

	// NullAuthor makes get_author return nil.
	NullAuthor bool

	Allocs      int
	Frees       int
	DoubleFrees int
	mu          sync.Mutex
}

// Library returns a MockLibrary exporting all four entry points.
func (m *MockPlugin) Library(path string) *MockLibrary {
	return &MockLibrary{
		LibPath: path,
		Symbols: map[string]any{
			abi.SymbolGetAuthor: abi.StringFunc(func() unsafe.Pointer {
				if m.NullAuthor {
					return nil
				}
				return m.alloc(m.Author)
			}),
			abi.SymbolGetID: abi.StringFunc(func() unsafe.Pointer {
				return m.alloc(m.ID)
			}),
			abi.SymbolLoadPlugin: abi.LoadFunc(func(ctx unsafe.Pointer) int32 {
				if m.Load == nil {
					return int32(abi.StatusOK)
				}
				return m.Load(ctx)
			}),
			abi.SymbolFreeString: abi.FreeFunc(m.free),
		},
	}
}

// Outstanding returns how many strings were handed out and never freed.
func (m *MockPlugin) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

func (m *MockPlugin) alloc(s string) unsafe.Pointer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.live == nil {
		m.live = make(map[unsafe.Pointer]bool)
	}
	b := append([]byte(s), 0)
	p := unsafe.Pointer(&b[0])
	m.live[p] = true
	m.Allocs++
	return p
}

func (m *MockPlugin) free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live[p] {
		m.DoubleFrees++
		return
	}
	delete(m.live, p)
	m.Frees++
}

// MockOpener implements ports.LibraryOpener keyed by file base name.
type MockOpener struct {
	Libraries map[string]abi.Library
	Errs      map[string]error
	Opened    []string
}

// Open records path and returns the library or error registered for its
// base name. Unknown names fail like a non-library file.
func (m *MockOpener) Open(ctx context.Context, path string) (abi.Library, error) {
	m.Opened = append(m.Opened, path)
	base := filepath.Base(path)
	if err, ok := m.Errs[base]; ok {
		return nil, err
	}
	if lib, ok := m.Libraries[base]; ok {
		return lib, nil
	}
	return nil, fmt.Errorf("%s: not a dynamic library", path)
}

// RecordingObserver implements ports.LoadObserver by recording events.
type RecordingObserver struct {
	LoadErrs       map[string]error
	DiscoverErrs   []error
	BindErrs       []error
	DiscoverCounts []int
}

// Discovered records the count and error of a directory scan.
func (r *RecordingObserver) Discovered(dir string, count int, err error) {
	r.DiscoverCounts = append(r.DiscoverCounts, count)
	r.DiscoverErrs = append(r.DiscoverErrs, err)
}

// Bound records a bind result.
func (r *RecordingObserver) Bound(path string, err error) {
	r.BindErrs = append(r.BindErrs, err)
}

// Loaded records the load result for id.
func (r *RecordingObserver) Loaded(id string, elapsed time.Duration, err error) {
	if r.LoadErrs == nil {
		r.LoadErrs = make(map[string]error)
	}
	r.LoadErrs[id] = err
}

// NewTestLogger returns a logger that discards output.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
