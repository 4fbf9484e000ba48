package goplugin_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/native-host-sdk/plugin/goplugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpener_RejectsNonLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(path, []byte("# not a library"), 0o600))

	lib, err := goplugin.NewOpener().Open(context.Background(), path)
	assert.Error(t, err)
	assert.Nil(t, lib)
}

func TestOpener_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := goplugin.NewOpener().Open(ctx, filepath.Join(t.TempDir(), "x.so"))
	assert.ErrorIs(t, err, context.Canceled)
}
