package ports

import (
	"context"

	"github.com/reglet-dev/native-host-sdk/plugin/entities"
)

// LockfileRepository manages lockfile persistence.
type LockfileRepository interface {
	// Load returns nil without error when no lockfile exists at path.
	Load(ctx context.Context, path string) (*entities.Lockfile, error)
	Save(ctx context.Context, lockfile *entities.Lockfile, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}
