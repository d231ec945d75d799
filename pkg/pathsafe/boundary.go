package pathsafe

import (
	"path/filepath"
	"strings"
)

// IsWithinBase reports whether candidatePath resolves to a location inside
// basePath. Both paths are canonicalized (symlinks and relative components
// resolved) before comparison, and containment requires either exact
// equality or a prefix match that includes the path separator, so a sibling
// like "/data/catalog-old" never matches the base "/data/catalog".
//
// Callers must treat a false result as a hard request rejection.
func IsWithinBase(candidatePath, basePath string) bool {
	candidate := canonicalize(candidatePath)
	base := canonicalize(basePath)
	if candidate == "" || base == "" {
		return false
	}

	return candidate == base || strings.HasPrefix(candidate, base+string(filepath.Separator))
}

// canonicalize resolves a path to its absolute, symlink-free form. A path
// whose final element does not exist yet is resolved through its parent so
// the check still catches symlinked directories above it.
func canonicalize(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return filepath.Clean(resolved)
	}

	// Final element missing: resolve the parent and rejoin.
	parent := filepath.Dir(abs)
	if resolvedParent, err := filepath.EvalSymlinks(parent); err == nil {
		return filepath.Join(resolvedParent, filepath.Base(abs))
	}

	return filepath.Clean(abs)
}
