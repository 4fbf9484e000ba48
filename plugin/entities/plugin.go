// Package entities contains the domain entities of the plugin loader.
package entities

import (
	"fmt"

	"github.com/reglet-dev/native-host-sdk/abi"
	"github.com/reglet-dev/native-host-sdk/plugin/values"
)

// Plugin is the aggregate root for one native plugin library.
//
// It exclusively owns its library for the life of the process. Metadata and
// entry points are fixed when the plugin is bound.
type Plugin struct {
	library  abi.Library
	err      error
	exports  abi.Exports
	digest   values.Digest
	metadata values.PluginMetadata
	state    values.State
}

// NewPlugin wraps a freshly opened library.
func NewPlugin(lib abi.Library) *Plugin {
	return &Plugin{
		library: lib,
		state:   values.StateOpened,
	}
}

// Path returns the library file path.
func (p *Plugin) Path() string {
	return p.library.Path()
}

// Library returns the owned library.
func (p *Plugin) Library() abi.Library {
	return p.library
}

// State returns the lifecycle state.
func (p *Plugin) State() values.State {
	return p.state
}

// Metadata returns the plugin's author and id. Zero until bound.
func (p *Plugin) Metadata() values.PluginMetadata {
	return p.metadata
}

// ID returns the plugin id, or the library path before binding.
func (p *Plugin) ID() string {
	if p.metadata.IsZero() {
		return p.library.Path()
	}
	return p.metadata.ID()
}

// Digest returns the library's content hash, if it was computed.
func (p *Plugin) Digest() values.Digest {
	return p.digest
}

// SetDigest records the library's content hash.
func (p *Plugin) SetDigest(d values.Digest) {
	p.digest = d
}

// Err returns the failure that disabled the plugin, if any.
func (p *Plugin) Err() error {
	return p.err
}

// Bind records the resolved entry points and metadata.
func (p *Plugin) Bind(exports abi.Exports, metadata values.PluginMetadata) error {
	if err := p.transition(values.StateBound); err != nil {
		return err
	}
	p.exports = exports
	p.metadata = metadata
	return nil
}

// LoadFunc returns the bound load_plugin entry point.
func (p *Plugin) LoadFunc() (abi.LoadFunc, error) {
	if p.state != values.StateBound {
		return nil, fmt.Errorf("%w: plugin %s is %s, want %s",
			ErrInvalidState, p.ID(), p.state, values.StateBound)
	}
	return p.exports.LoadPlugin, nil
}

// MarkLoaded records a successful load_plugin call.
func (p *Plugin) MarkLoaded() error {
	return p.transition(values.StateLoaded)
}

// MarkFailed disables the plugin after load_plugin failed.
func (p *Plugin) MarkFailed(cause error) error {
	if err := p.transition(values.StateFailed); err != nil {
		return err
	}
	p.err = cause
	return nil
}

func (p *Plugin) transition(next values.State) error {
	if !p.state.CanTransition(next) {
		return fmt.Errorf("%w: plugin %s cannot go from %s to %s",
			ErrInvalidState, p.ID(), p.state, next)
	}
	p.state = next
	return nil
}
