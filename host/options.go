package host

import (
	"log/slog"

	"github.com/reglet-dev/native-host-sdk/plugin/ports"
	"github.com/reglet-dev/native-host-sdk/registry"
)

// Option defines a functional option for configuring a Host.
type Option func(*settings)

type settings struct {
	opener       ports.LibraryOpener
	observer     ports.LoadObserver
	lockfiles    ports.LockfileRepository
	logger       *slog.Logger
	registryOpts []registry.Option
}

// WithLogger sets the logger used by the host and its loader.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithOpener replaces the dynamic library opener.
func WithOpener(opener ports.LibraryOpener) Option {
	return func(s *settings) {
		s.opener = opener
	}
}

// WithObserver receives loader lifecycle events, e.g. observability.Metrics.
func WithObserver(observer ports.LoadObserver) Option {
	return func(s *settings) {
		s.observer = observer
	}
}

// WithLockfileRepository replaces the lockfile storage.
func WithLockfileRepository(repo ports.LockfileRepository) Option {
	return func(s *settings) {
		s.lockfiles = repo
	}
}

// WithRegistryOptions configures the registry the host creates.
func WithRegistryOptions(opts ...registry.Option) Option {
	return func(s *settings) {
		s.registryOpts = append(s.registryOpts, opts...)
	}
}
