package contentstore

import "errors"

// Sentinel errors returned by the reader and cache. Callers use errors.Is
// to distinguish a missing file (a 404-style condition) from an oversized
// file or any other I/O failure.
var (
	// ErrNotFound indicates the requested path does not exist.
	ErrNotFound = errors.New("content not found")

	// ErrTooLarge indicates the file exceeds the configured size ceiling.
	// The file is never read, not even partially.
	ErrTooLarge = errors.New("content exceeds size limit")

	// ErrRead wraps any other filesystem failure (permissions, transient
	// I/O errors). The underlying cause is attached for logging but must
	// never be echoed to external callers.
	ErrRead = errors.New("content read failed")
)
