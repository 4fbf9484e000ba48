package abi

import (
	"errors"
	"unicode/utf8"
	"unsafe"
)

// MaxStringLen bounds how far GoString scans for a terminator.
const MaxStringLen = 4096

var (
	// ErrNullString is returned when a plugin hands back a nil string pointer.
	ErrNullString = errors.New("null string")

	// ErrStringTooLong is returned when no terminator is found within
	// MaxStringLen bytes.
	ErrStringTooLong = errors.New("string exceeds maximum length")

	// ErrInvalidUTF8 is returned when the bytes before the terminator are not
	// valid UTF-8.
	ErrInvalidUTF8 = errors.New("string is not valid UTF-8")
)

// GoString copies the NUL-terminated string at p into Go memory. It does not
// free p.
func GoString(p unsafe.Pointer) (string, error) {
	if p == nil {
		return "", ErrNullString
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
		if n >= MaxStringLen {
			return "", ErrStringTooLong
		}
	}
	s := string(unsafe.Slice((*byte)(p), n))
	if !utf8.ValidString(s) {
		return "", ErrInvalidUTF8
	}
	return s, nil
}
