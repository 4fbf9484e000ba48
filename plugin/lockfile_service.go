package plugin

import (
	"context"
	"fmt"
	"time"

	"github.com/reglet-dev/native-host-sdk/plugin/entities"
	"github.com/reglet-dev/native-host-sdk/plugin/ports"
	"github.com/reglet-dev/native-host-sdk/plugin/values"
)

// LockfileService pins the libraries a host loaded so later runs can verify
// them.
type LockfileService struct {
	repo ports.LockfileRepository
	now  func() time.Time
}

// NewLockfileService creates a new LockfileService.
func NewLockfileService(repo ports.LockfileRepository) *LockfileService {
	return &LockfileService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Load returns the lockfile at path, or an empty one when none exists.
func (s *LockfileService) Load(ctx context.Context, path string) (*entities.Lockfile, error) {
	lock, err := s.repo.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading lockfile: %w", err)
	}
	if lock == nil {
		lock = entities.NewLockfile()
	}
	return lock, nil
}

// Record adds every loaded plugin with a known digest to the lockfile at
// path. The file is only rewritten when an entry was added or changed.
func (s *LockfileService) Record(
	ctx context.Context,
	path string,
	plugins []*entities.Plugin,
) (*entities.Lockfile, error) {
	lock, err := s.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	updated := false
	for _, p := range plugins {
		if p.State() != values.StateLoaded || p.Digest().IsZero() {
			continue
		}

		id := p.Metadata().ID()
		existing := lock.GetPlugin(id)
		if existing != nil && existing.Digest == p.Digest().String() && existing.Path == p.Path() {
			continue
		}

		entry := entities.PluginLock{
			Path:   p.Path(),
			Author: p.Metadata().Author(),
			Digest: p.Digest().String(),
			Loaded: s.now(),
		}
		if err := lock.AddPlugin(id, entry); err != nil {
			return nil, err
		}
		updated = true
	}

	if updated {
		lock.Generated = s.now()
		if err := s.repo.Save(ctx, lock, path); err != nil {
			return nil, fmt.Errorf("saving lockfile: %w", err)
		}
	}

	return lock, nil
}
