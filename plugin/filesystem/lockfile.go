package filesystem

import (
	"time"

	"github.com/reglet-dev/native-host-sdk/plugin/entities"
)

// Lockfile represents the YAML structure of a lockfile.
type Lockfile struct {
	Generated time.Time             `yaml:"generated"`
	Plugins   map[string]PluginLock `yaml:"plugins"`
	Version   int                   `yaml:"lockfile_version"`
}

// PluginLock represents one loaded library in YAML.
type PluginLock struct {
	Loaded time.Time `yaml:"loaded,omitempty"`
	Path   string    `yaml:"path"`
	Author string    `yaml:"author,omitempty"`
	Digest string    `yaml:"digest"`
}

// ToEntity converts the lockfile to a domain entity.
func (l *Lockfile) ToEntity() *entities.Lockfile {
	entity := &entities.Lockfile{
		Generated: l.Generated,
		Version:   l.Version,
		Plugins:   make(map[string]entities.PluginLock, len(l.Plugins)),
	}

	for id, lock := range l.Plugins {
		entity.Plugins[id] = entities.PluginLock(lock)
	}

	return entity
}

// FromEntity converts a domain lockfile to YAML representation.
func FromEntity(entity *entities.Lockfile) *Lockfile {
	if entity == nil {
		return nil
	}

	l := &Lockfile{
		Generated: entity.Generated,
		Version:   entity.Version,
		Plugins:   make(map[string]PluginLock, len(entity.Plugins)),
	}

	for id, lock := range entity.Plugins {
		l.Plugins[id] = PluginLock(lock)
	}

	return l
}
