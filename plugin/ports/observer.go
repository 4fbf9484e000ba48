package ports

import "time"

// LoadObserver receives loader lifecycle events.
type LoadObserver interface {
	// Discovered reports how many libraries a directory scan opened.
	Discovered(dir string, count int, err error)

	// Bound reports a bind attempt for the library at path.
	Bound(path string, err error)

	// Loaded reports a load_plugin call and how long it took.
	Loaded(id string, elapsed time.Duration, err error)
}

// NopObserver discards every event.
type NopObserver struct{}

// Discovered implements LoadObserver.
func (NopObserver) Discovered(string, int, error) {}

// Bound implements LoadObserver.
func (NopObserver) Bound(string, error) {}

// Loaded implements LoadObserver.
func (NopObserver) Loaded(string, time.Duration, error) {}
