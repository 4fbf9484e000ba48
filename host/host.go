// Package host ties a capability registry, a plugin loader and the host
// configuration together.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/native-host-sdk/plugin"
	"github.com/reglet-dev/native-host-sdk/plugin/entities"
	"github.com/reglet-dev/native-host-sdk/plugin/filesystem"
	"github.com/reglet-dev/native-host-sdk/plugin/goplugin"
	"github.com/reglet-dev/native-host-sdk/plugin/services"
	"github.com/reglet-dev/native-host-sdk/registry"
)

// ErrAlreadyLoaded is returned by a second LoadPlugins call.
var ErrAlreadyLoaded = errors.New("plugins already loaded")

// Host owns one registry of variant type V and the plugins that fill it.
// Plugin handles are kept for the life of the Host, so functions plugins
// registered stay callable.
type Host[V any] struct {
	registry  *registry.Registry[V]
	loader    *plugin.Loader
	lockfiles *plugin.LockfileService
	logger    *slog.Logger
	plugins   []*entities.Plugin
	cfg       Config
	loaded    bool
}

// New creates a host from cfg. When a lockfile is configured it is read now
// and used to verify libraries before they are opened.
func New[V any](ctx context.Context, cfg Config, opts ...Option) (*Host[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.opener == nil {
		s.opener = goplugin.NewOpener()
	}
	if s.lockfiles == nil {
		s.lockfiles = filesystem.NewFileLockfileRepository()
	}

	loaderOpts := []plugin.LoaderOption{
		plugin.WithLogger(s.logger),
		plugin.WithIncludePatterns(cfg.Include...),
	}
	if s.observer != nil {
		loaderOpts = append(loaderOpts, plugin.WithObserver(s.observer))
	}

	h := &Host[V]{
		registry: registry.New[V](s.registryOpts...),
		logger:   s.logger,
		cfg:      cfg,
	}

	if cfg.Lockfile != "" {
		h.lockfiles = plugin.NewLockfileService(s.lockfiles)
		lock, err := h.lockfiles.Load(ctx, cfg.Lockfile)
		if err != nil {
			return nil, err
		}
		loaderOpts = append(loaderOpts, plugin.WithIntegrity(services.NewIntegrityService(lock, cfg.Verify)))
	}

	loader, err := plugin.NewLoader(s.opener, loaderOpts...)
	if err != nil {
		return nil, err
	}
	h.loader = loader
	return h, nil
}

// LoadPlugins loads every plugin in the configured directory into the
// registry. Failed plugins are kept, disabled, alongside loaded ones.
func (h *Host[V]) LoadPlugins(ctx context.Context) error {
	if h.loaded {
		return ErrAlreadyLoaded
	}
	h.loaded = true

	plugins, loadErr := h.loader.LoadDirectory(ctx, h.cfg.PluginDir, h.registry)
	h.plugins = append(h.plugins, plugins...)

	if h.lockfiles != nil && len(plugins) > 0 {
		if _, err := h.lockfiles.Record(ctx, h.cfg.Lockfile, plugins); err != nil {
			h.logger.WarnContext(ctx, "failed to record lockfile", "path", h.cfg.Lockfile, "error", err)
			loadErr = errors.Join(loadErr, err)
		}
	}

	h.logger.InfoContext(ctx, "plugin directory processed",
		"dir", h.cfg.PluginDir,
		"plugins", len(plugins),
		"variants", h.registry.Len())
	return loadErr
}

// Registry returns the host-owned registry.
func (h *Host[V]) Registry() *registry.Registry[V] {
	return h.registry
}

// Plugins returns every plugin handle the host holds.
func (h *Host[V]) Plugins() []*entities.Plugin {
	out := make([]*entities.Plugin, len(h.plugins))
	copy(out, h.plugins)
	return out
}

// Config returns the configuration the host was built with.
func (h *Host[V]) Config() Config {
	return h.cfg
}
