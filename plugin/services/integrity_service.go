// Package services holds domain services of the plugin loader.
package services

import (
	"fmt"

	"github.com/reglet-dev/native-host-sdk/plugin/entities"
	"github.com/reglet-dev/native-host-sdk/plugin/values"
)

// IntegrityService checks library files against the digests pinned in a
// lockfile before they are mapped into the process.
type IntegrityService struct {
	lock   *entities.Lockfile
	strict bool
}

// NewIntegrityService creates an integrity service. A nil lockfile pins
// nothing. In strict mode every library must have a lockfile entry.
func NewIntegrityService(lock *entities.Lockfile, strict bool) *IntegrityService {
	if lock == nil {
		lock = &entities.Lockfile{}
	}
	return &IntegrityService{
		lock:   lock,
		strict: strict,
	}
}

// Strict reports whether unpinned libraries are rejected.
func (s *IntegrityService) Strict() bool {
	return s.strict
}

// Verify hashes the library at path and compares it with its lockfile entry.
// The computed digest is returned so callers can record it.
func (s *IntegrityService) Verify(path string) (values.Digest, error) {
	actual, err := values.ComputeFileDigest(path)
	if err != nil {
		return values.Digest{}, fmt.Errorf("computing digest: %w", err)
	}

	id, pinned := s.lock.FindByPath(path)
	if pinned == nil {
		if s.strict {
			return actual, fmt.Errorf("%w: %s is not pinned in the lockfile", entities.ErrIntegrityCheckFailed, path)
		}
		return actual, nil
	}

	expected, err := values.ParseDigest(pinned.Digest)
	if err != nil {
		return actual, fmt.Errorf("lockfile entry %q: %w", id, err)
	}
	if !expected.Equals(actual) {
		return actual, &entities.IntegrityError{
			Path:     path,
			Expected: expected,
			Actual:   actual,
		}
	}
	return actual, nil
}
