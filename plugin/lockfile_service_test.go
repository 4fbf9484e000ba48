package plugin_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/native-host-sdk/abi"
	"github.com/reglet-dev/native-host-sdk/plugin"
	"github.com/reglet-dev/native-host-sdk/plugin/entities"
	"github.com/reglet-dev/native-host-sdk/plugin/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepo implements ports.LockfileRepository
type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Load(ctx context.Context, path string) (*entities.Lockfile, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lockfile), args.Error(1)
}

func (m *MockRepo) Save(ctx context.Context, lockfile *entities.Lockfile, path string) error {
	args := m.Called(ctx, lockfile, path)
	return args.Error(0)
}

func (m *MockRepo) Exists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

// loadedPlugins loads one plugin with its digest computed.
func loadedPlugins(t *testing.T) []*entities.Plugin {
	t.Helper()
	dir := pluginDir(t, "a.so")
	opener := &plugin.MockOpener{Libraries: map[string]abi.Library{
		"a.so": (&plugin.MockPlugin{Author: "jprugel", ID: "upgrade3"}).Library(filepath.Join(dir, "a.so")),
	}}
	l := newLoader(t, opener, plugin.WithIntegrity(services.NewIntegrityService(nil, false)))
	plugins, err := l.LoadDirectory(context.Background(), dir, nil)
	require.NoError(t, err)
	return plugins
}

func TestLockfileService_Record(t *testing.T) {
	ctx := context.Background()
	lockPath := "plugins.lock"

	t.Run("creates new lockfile if missing", func(t *testing.T) {
		plugins := loadedPlugins(t)
		mockRepo := new(MockRepo)
		mockRepo.On("Load", ctx, lockPath).Return(nil, nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*entities.Lockfile"), lockPath).Return(nil).Once()

		lock, err := plugin.NewLockfileService(mockRepo).Record(ctx, lockPath, plugins)
		require.NoError(t, err)
		require.Equal(t, 1, lock.PluginCount())

		entry := lock.GetPlugin("upgrade3")
		require.NotNil(t, entry)
		assert.Equal(t, "jprugel", entry.Author)
		assert.Equal(t, plugins[0].Digest().String(), entry.Digest)

		mockRepo.AssertExpectations(t)
	})

	t.Run("unchanged entries are not rewritten", func(t *testing.T) {
		plugins := loadedPlugins(t)
		existing := entities.NewLockfile()
		require.NoError(t, existing.AddPlugin("upgrade3", entities.PluginLock{
			Path:   plugins[0].Path(),
			Digest: plugins[0].Digest().String(),
		}))

		mockRepo := new(MockRepo)
		mockRepo.On("Load", ctx, lockPath).Return(existing, nil).Once()

		_, err := plugin.NewLockfileService(mockRepo).Record(ctx, lockPath, plugins)
		require.NoError(t, err)
		mockRepo.AssertNotCalled(t, "Save")
	})

	t.Run("changed digest is rewritten", func(t *testing.T) {
		plugins := loadedPlugins(t)
		existing := entities.NewLockfile()
		require.NoError(t, existing.AddPlugin("upgrade3", entities.PluginLock{
			Path:   plugins[0].Path(),
			Digest: "sha256:486ea46224d1bb4fb680f34f7c9ad96a8f24ec88be73ea8e5a6c65260e9cb8a7",
		}))

		mockRepo := new(MockRepo)
		mockRepo.On("Load", ctx, lockPath).Return(existing, nil).Once()
		mockRepo.On("Save", ctx, mock.MatchedBy(func(l *entities.Lockfile) bool {
			return l.GetPlugin("upgrade3").Digest == plugins[0].Digest().String()
		}), lockPath).Return(nil).Once()

		_, err := plugin.NewLockfileService(mockRepo).Record(ctx, lockPath, plugins)
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("load error", func(t *testing.T) {
		mockRepo := new(MockRepo)
		mockRepo.On("Load", ctx, lockPath).Return(nil, errors.New("permission denied")).Once()

		_, err := plugin.NewLockfileService(mockRepo).Record(ctx, lockPath, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading lockfile")
	})
}
