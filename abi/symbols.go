// Package abi defines the boundary contract between a host and a native
// plugin library: the four exported entry points, their ownership rules and
// the status codes load_plugin reports.
//
// Strings returned by get_author and get_id are NUL-terminated, allocated by
// the plugin, and owned by the caller until it hands them back to the same
// plugin's free_string. The context pointer given to load_plugin is produced
// by Box and consumed by Unbox; nothing else about it crosses the boundary.
package abi

import (
	"strings"
	"unsafe"
)

// ABI symbol names.
const (
	SymbolGetAuthor  = "get_author"
	SymbolGetID      = "get_id"
	SymbolLoadPlugin = "load_plugin"
	SymbolFreeString = "free_string"
)

// Symbols lists every required entry point in binding order.
var Symbols = []string{
	SymbolGetAuthor,
	SymbolGetID,
	SymbolLoadPlugin,
	SymbolFreeString,
}

// Entry point signatures. These are aliases so that values obtained from a
// symbol table assert directly to them.
type (
	// StringFunc returns a newly allocated NUL-terminated string.
	StringFunc = func() unsafe.Pointer

	// LoadFunc registers the plugin's capabilities into ctx.
	LoadFunc = func(ctx unsafe.Pointer) int32

	// FreeFunc releases a string returned by a StringFunc. nil is a no-op.
	FreeFunc = func(s unsafe.Pointer)
)

// Exports is a fully resolved set of entry points.
type Exports struct {
	GetAuthor  StringFunc
	GetID      StringFunc
	LoadPlugin LoadFunc
	FreeString FreeFunc
}

// GoName maps an ABI symbol name to the exported Go identifier a Go-built
// plugin uses for it, e.g. "get_author" becomes "GetAuthor". The trailing
// "id" segment is written "ID".
func GoName(symbol string) string {
	parts := strings.Split(symbol, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		if part == "id" {
			b.WriteString("ID")
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
