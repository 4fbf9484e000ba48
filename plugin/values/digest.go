package values

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// AlgorithmSHA256 is the only digest algorithm libraries are pinned with.
const AlgorithmSHA256 = "sha256"

// Digest is the content hash of a library file.
type Digest struct {
	algorithm string
	value     string
}

// NewDigest creates a digest from algorithm and lowercase hex value.
func NewDigest(algorithm, hexValue string) (Digest, error) {
	if algorithm != AlgorithmSHA256 {
		return Digest{}, fmt.Errorf("unsupported digest algorithm: %s", algorithm)
	}
	raw, err := hex.DecodeString(hexValue)
	if err != nil {
		return Digest{}, fmt.Errorf("invalid digest value: %w", err)
	}
	if len(raw) != sha256.Size {
		return Digest{}, fmt.Errorf("invalid digest length: %d bytes", len(raw))
	}
	return Digest{algorithm: algorithm, value: strings.ToLower(hexValue)}, nil
}

// ParseDigest parses "sha256:<hex>".
func ParseDigest(s string) (Digest, error) {
	algorithm, value, ok := strings.Cut(s, ":")
	if !ok {
		return Digest{}, fmt.Errorf("invalid digest format: %s", s)
	}
	return NewDigest(algorithm, value)
}

// String returns the canonical "algorithm:hex" form, or "" for the zero value.
func (d Digest) String() string {
	if d.IsZero() {
		return ""
	}
	return d.algorithm + ":" + d.value
}

// Algorithm returns the hash algorithm.
func (d Digest) Algorithm() string {
	return d.algorithm
}

// Value returns the hex-encoded hash value.
func (d Digest) Value() string {
	return d.value
}

// IsZero reports whether d is unset.
func (d Digest) IsZero() bool {
	return d.value == ""
}

// Equals checks equality with another digest.
func (d Digest) Equals(other Digest) bool {
	return d.algorithm == other.algorithm && d.value == other.value
}

// ComputeDigest hashes everything read from r.
func ComputeDigest(r io.Reader) (Digest, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return Digest{}, err
	}
	return Digest{algorithm: AlgorithmSHA256, value: hex.EncodeToString(h.Sum(nil))}, nil
}

// ComputeFileDigest hashes the file at path.
func ComputeFileDigest(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer func() { _ = f.Close() }()

	d, err := ComputeDigest(f)
	if err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	return d, nil
}
