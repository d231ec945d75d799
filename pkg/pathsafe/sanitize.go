// Package pathsafe validates untrusted identifiers before they are joined
// into filesystem paths, and confirms resolved paths stay inside an allowed
// base directory.
//
// The two checks are deliberately independent: SanitizeIdentifier rejects
// hostile input before any path is built, and IsWithinBase re-checks the
// assembled path after resolution as defense in depth (unusual Unicode
// normalization, case-insensitive filesystems, symlinks).
package pathsafe

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultMaxIdentifierLength is the identifier length ceiling used when a
// caller passes a non-positive maximum.
const DefaultMaxIdentifierLength = 50

// ErrorKind classifies why an identifier was rejected.
type ErrorKind int

const (
	KindEmptyInput ErrorKind = iota
	KindTooLong
	KindTraversalAttempt
	KindDisallowedCharacters
)

// ValidationError describes a rejected identifier. Message states the
// violated rule and never echoes the raw input.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// identifierPattern matches safe characters for a single path segment:
// alphanumeric, dash, underscore, and dot.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// SanitizeIdentifier validates a caller-supplied identifier and returns it
// usable as exactly one path segment under a base directory.
//
// The identifier is rejected when it is empty, longer than maxLength,
// contains a traversal sequence, path separator or NUL byte anywhere in
// the raw input, or contains characters outside [A-Za-z0-9._-].
func SanitizeIdentifier(input string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxIdentifierLength
	}

	if strings.TrimSpace(input) == "" {
		return "", &ValidationError{Kind: KindEmptyInput, Message: "identifier must be a non-empty string"}
	}

	if len(input) > maxLength {
		return "", &ValidationError{Kind: KindTooLong, Message: "identifier exceeds maximum length"}
	}

	// Checked on the raw input: normalization must never rescue a hostile
	// identifier into an acceptable one.
	if strings.Contains(input, "..") || strings.ContainsAny(input, `/\`) ||
		strings.ContainsRune(input, 0) {
		return "", &ValidationError{Kind: KindTraversalAttempt, Message: "identifier must not contain path traversal sequences or separators"}
	}

	// Clean cannot reintroduce separators past the raw check, but a lone
	// "." still names a directory rather than an entry.
	normalized := filepath.Clean(input)
	if normalized == "." || normalized == ".." || strings.ContainsAny(normalized, `/\`) {
		return "", &ValidationError{Kind: KindTraversalAttempt, Message: "identifier must not contain path traversal sequences or separators"}
	}

	if !identifierPattern.MatchString(normalized) {
		return "", &ValidationError{Kind: KindDisallowedCharacters, Message: "identifier may only contain letters, digits, dash, underscore, and dot"}
	}

	return normalized, nil
}
