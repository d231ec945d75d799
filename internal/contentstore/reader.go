// Package contentstore provides the read path between the catalog on disk
// and the MCP tool handlers: a size-capped file reader, a time-bounded
// content cache, and excerpt search over large documents.
package contentstore

import (
	"context"
	"fmt"
	"os"
)

// ReadFile reads the file at path fully into memory, but only after
// confirming its reported size does not exceed maxBytes. Oversized files
// fail fast with ErrTooLarge without any bytes being read. A maxBytes of
// zero or less disables the size check.
//
// Missing files map to ErrNotFound so the request layer can surface a
// discovery hint instead of a generic failure.
func ReadFile(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	if info.IsDir() {
		return nil, ErrNotFound
	}

	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes over %d byte limit", ErrTooLarge, info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	// An abandoned request must not hand back content the caller will
	// never use, and the cache must not publish it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return data, nil
}
