package entities

import (
	"errors"
	"fmt"

	"github.com/reglet-dev/native-host-sdk/abi"
	"github.com/reglet-dev/native-host-sdk/plugin/values"
	"github.com/reglet-dev/native-host-sdk/registry"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrDirectoryNotFound is returned when the plugin directory does not exist.
	ErrDirectoryNotFound = errors.New("plugin directory not found")

	// ErrNotADirectory is returned when the plugin directory path is a file.
	ErrNotADirectory = errors.New("plugin path is not a directory")

	// ErrLibraryOpenFailed is returned when a file cannot be opened as a library.
	ErrLibraryOpenFailed = errors.New("library open failed")

	// ErrMissingSymbol is returned when a library lacks a required entry point.
	ErrMissingSymbol = errors.New("missing symbol")

	// ErrMetadataDecode is returned when get_author or get_id yields an
	// unusable string.
	ErrMetadataDecode = errors.New("metadata decode failed")

	// ErrPluginLoadFailed is returned when load_plugin reports failure.
	ErrPluginLoadFailed = errors.New("plugin load failed")

	// ErrIntegrityCheckFailed is returned when digest verification fails.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")

	// ErrInvalidState is returned when a lifecycle step runs out of order.
	ErrInvalidState = errors.New("invalid plugin state")

	// ErrDuplicatePlugin is returned when two libraries report the same id.
	ErrDuplicatePlugin = errors.New("duplicate plugin id")
)

// LibraryOpenError indicates a discovered file could not be opened.
type LibraryOpenError struct {
	Err  error
	Path string
}

func (e *LibraryOpenError) Error() string {
	return fmt.Sprintf("open library %s: %v", e.Path, e.Err)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, entities.ErrLibraryOpenFailed)
func (e *LibraryOpenError) Is(target error) bool {
	return target == ErrLibraryOpenFailed
}

func (e *LibraryOpenError) Unwrap() error {
	return e.Err
}

// MissingSymbolError names the entry point a library failed to provide.
type MissingSymbolError struct {
	Err  error
	Name string
	Path string
}

func (e *MissingSymbolError) Error() string {
	msg := fmt.Sprintf("missing symbol %q", e.Name)
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is implements error matching for errors.Is() checks.
func (e *MissingSymbolError) Is(target error) bool {
	return target == ErrMissingSymbol
}

func (e *MissingSymbolError) Unwrap() error {
	return e.Err
}

// PluginLoadError carries the nonzero status load_plugin returned.
type PluginLoadError struct {
	ID   string
	Code int32
}

func (e *PluginLoadError) Error() string {
	return fmt.Sprintf("plugin %s load failed: %s (code %d)", e.ID, abi.Status(e.Code), e.Code)
}

// Is implements error matching for errors.Is() checks.
// A type mismatch status also matches registry.ErrTypeMismatch.
func (e *PluginLoadError) Is(target error) bool {
	if target == ErrPluginLoadFailed {
		return true
	}
	return target == registry.ErrTypeMismatch && abi.Status(e.Code) == abi.StatusTypeMismatch
}

// IntegrityError indicates digest mismatch.
// Provides detailed information about expected vs actual digest.
type IntegrityError struct {
	Path     string
	Expected values.Digest
	Actual   values.Digest
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf(
		"integrity check failed for %s: expected %s, got %s",
		e.Path,
		e.Expected.String(),
		e.Actual.String(),
	)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, entities.ErrIntegrityCheckFailed)
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrityCheckFailed
}
