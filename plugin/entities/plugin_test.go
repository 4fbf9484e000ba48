package entities_test

import (
	"errors"
	"fmt"
	"testing"
	"unsafe"

	"github.com/reglet-dev/native-host-sdk/abi"
	"github.com/reglet-dev/native-host-sdk/plugin/entities"
	"github.com/reglet-dev/native-host-sdk/plugin/values"
	"github.com/reglet-dev/native-host-sdk/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLibrary struct{ path string }

func (s stubLibrary) Path() string { return s.path }
func (s stubLibrary) Lookup(string) (any, error) { return nil, errors.New("no symbols") }

func boundPlugin(t *testing.T) *entities.Plugin {
	t.Helper()
	p := entities.NewPlugin(stubLibrary{path: "plugins/libupgrade3.so"})
	meta, err := values.NewPluginMetadata("jprugel", "upgrade3")
	require.NoError(t, err)
	exports := abi.Exports{LoadPlugin: func(unsafe.Pointer) int32 { return 0 }}
	require.NoError(t, p.Bind(exports, meta))
	return p
}

func TestPlugin_Lifecycle(t *testing.T) {
	p := entities.NewPlugin(stubLibrary{path: "plugins/libupgrade3.so"})
	assert.Equal(t, values.StateOpened, p.State())
	assert.Equal(t, "plugins/libupgrade3.so", p.ID())

	_, err := p.LoadFunc()
	require.ErrorIs(t, err, entities.ErrInvalidState)

	p = boundPlugin(t)
	assert.Equal(t, values.StateBound, p.State())
	assert.Equal(t, "upgrade3", p.ID())
	assert.Equal(t, "jprugel", p.Metadata().Author())

	load, err := p.LoadFunc()
	require.NoError(t, err)
	assert.Equal(t, int32(0), load(nil))

	require.NoError(t, p.MarkLoaded())
	assert.Equal(t, values.StateLoaded, p.State())
	assert.ErrorIs(t, p.MarkLoaded(), entities.ErrInvalidState)
	assert.ErrorIs(t, p.MarkFailed(errors.New("late")), entities.ErrInvalidState)
}

func TestPlugin_MarkFailed(t *testing.T) {
	p := boundPlugin(t)
	cause := &entities.PluginLoadError{ID: "upgrade3", Code: -1}

	require.NoError(t, p.MarkFailed(cause))
	assert.Equal(t, values.StateFailed, p.State())
	assert.ErrorIs(t, p.Err(), entities.ErrPluginLoadFailed)

	_, err := p.LoadFunc()
	assert.ErrorIs(t, err, entities.ErrInvalidState)
}

func TestPlugin_BindTwice(t *testing.T) {
	p := boundPlugin(t)
	err := p.Bind(abi.Exports{}, values.PluginMetadata{})
	assert.ErrorIs(t, err, entities.ErrInvalidState)
	assert.Equal(t, "upgrade3", p.ID())
}

func TestErrors_Matching(t *testing.T) {
	openErr := fmt.Errorf("discover: %w", &entities.LibraryOpenError{Path: "x.so", Err: errors.New("invalid ELF header")})
	assert.ErrorIs(t, openErr, entities.ErrLibraryOpenFailed)
	var loe *entities.LibraryOpenError
	require.ErrorAs(t, openErr, &loe)
	assert.Equal(t, "x.so", loe.Path)

	symErr := &entities.MissingSymbolError{Name: abi.SymbolFreeString, Path: "x.so"}
	assert.ErrorIs(t, symErr, entities.ErrMissingSymbol)
	assert.Equal(t, `missing symbol "free_string" in x.so`, symErr.Error())

	failed := &entities.PluginLoadError{ID: "upgrade3", Code: int32(abi.StatusFailed)}
	assert.ErrorIs(t, failed, entities.ErrPluginLoadFailed)
	assert.NotErrorIs(t, failed, registry.ErrTypeMismatch)
	assert.Equal(t, "plugin upgrade3 load failed: load failed (code -1)", failed.Error())

	mismatch := &entities.PluginLoadError{ID: "upgrade3", Code: int32(abi.StatusTypeMismatch)}
	assert.ErrorIs(t, mismatch, registry.ErrTypeMismatch)

	integrity := &entities.IntegrityError{Path: "x.so"}
	assert.ErrorIs(t, integrity, entities.ErrIntegrityCheckFailed)
}
