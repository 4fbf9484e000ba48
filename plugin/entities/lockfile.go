package entities

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"
)

// LockfileVersion is the schema version written by NewLockfile.
const LockfileVersion = 1

// Lockfile is an aggregate root pinning the libraries a host loaded.
//
// Invariants:
// - Each plugin entry must have a digest and a path
// - Generated timestamp must be set when the lockfile has entries
type Lockfile struct {
	Generated time.Time
	Plugins   map[string]PluginLock
	Version   int
}

// PluginLock is a value object recording one loaded library.
// Immutable after creation.
type PluginLock struct {
	Loaded time.Time
	Path   string
	Author string
	Digest string // sha256:...
}

// NewLockfile creates a new lockfile with the current version.
func NewLockfile() *Lockfile {
	return &Lockfile{
		Version:   LockfileVersion,
		Generated: time.Now().UTC(),
		Plugins:   make(map[string]PluginLock),
	}
}

// AddPlugin adds or replaces the entry for plugin id.
func (l *Lockfile) AddPlugin(id string, lock PluginLock) error {
	if err := validateLock(id, lock); err != nil {
		return err
	}
	if l.Plugins == nil {
		l.Plugins = make(map[string]PluginLock)
	}
	lock.Path = filepath.Clean(lock.Path)
	l.Plugins[id] = lock
	return nil
}

// GetPlugin retrieves a plugin lock entry by id.
// Returns nil if not found.
func (l *Lockfile) GetPlugin(id string) *PluginLock {
	if lock, ok := l.Plugins[id]; ok {
		return &lock
	}
	return nil
}

// FindByPath returns the id and entry recorded for a library path.
func (l *Lockfile) FindByPath(path string) (string, *PluginLock) {
	path = filepath.Clean(path)
	for _, id := range l.IDs() {
		lock := l.Plugins[id]
		if lock.Path == path {
			return id, &lock
		}
	}
	return "", nil
}

// IDs returns the locked plugin ids in sorted order.
func (l *Lockfile) IDs() []string {
	ids := make([]string, 0, len(l.Plugins))
	for id := range l.Plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks lockfile invariants.
func (l *Lockfile) Validate() error {
	if l.PluginCount() > 0 && l.Generated.IsZero() {
		return fmt.Errorf("generated timestamp is required")
	}
	for id, lock := range l.Plugins {
		if err := validateLock(id, lock); err != nil {
			return err
		}
	}
	return nil
}

// PluginCount returns the number of locked plugins.
func (l *Lockfile) PluginCount() int {
	return len(l.Plugins)
}

func validateLock(id string, lock PluginLock) error {
	if lock.Digest == "" {
		return fmt.Errorf("plugin %q: digest is required", id)
	}
	if lock.Path == "" {
		return fmt.Errorf("plugin %q: path is required", id)
	}
	return nil
}
