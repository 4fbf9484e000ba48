package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/native-host-sdk/plugin/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	helloDigest = "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	otherDigest = "sha256:486ea46224d1bb4fb680f34f7c9ad96a8f24ec88be73ea8e5a6c65260e9cb8a7"
)

func writeLibrary(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIntegrityService_Verify(t *testing.T) {
	path := writeLibrary(t, "libupgrade3.so", "hello")

	t.Run("matching digest", func(t *testing.T) {
		lock := entities.NewLockfile()
		require.NoError(t, lock.AddPlugin("upgrade3", entities.PluginLock{Path: path, Digest: helloDigest}))

		d, err := NewIntegrityService(lock, true).Verify(path)
		require.NoError(t, err)
		assert.Equal(t, helloDigest, d.String())
	})

	t.Run("mismatch", func(t *testing.T) {
		lock := entities.NewLockfile()
		require.NoError(t, lock.AddPlugin("upgrade3", entities.PluginLock{Path: path, Digest: otherDigest}))

		_, err := NewIntegrityService(lock, false).Verify(path)
		require.ErrorIs(t, err, entities.ErrIntegrityCheckFailed)

		var ie *entities.IntegrityError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, otherDigest, ie.Expected.String())
		assert.Equal(t, helloDigest, ie.Actual.String())
	})

	t.Run("unpinned lenient", func(t *testing.T) {
		svc := NewIntegrityService(nil, false)
		assert.False(t, svc.Strict())

		d, err := svc.Verify(path)
		require.NoError(t, err)
		assert.Equal(t, helloDigest, d.String())
	})

	t.Run("unpinned strict", func(t *testing.T) {
		_, err := NewIntegrityService(nil, true).Verify(path)
		assert.ErrorIs(t, err, entities.ErrIntegrityCheckFailed)
	})

	t.Run("malformed pinned digest", func(t *testing.T) {
		lock := entities.NewLockfile()
		require.NoError(t, lock.AddPlugin("upgrade3", entities.PluginLock{Path: path, Digest: "md5:abc"}))

		_, err := NewIntegrityService(lock, false).Verify(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `lockfile entry "upgrade3"`)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewIntegrityService(nil, false).Verify(filepath.Join(t.TempDir(), "gone.so"))
		assert.Error(t, err)
	})
}
