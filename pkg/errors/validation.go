package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeID validates a file-id coming from the analyzer or from
// API clients. It rejects ids that could be used for path traversal or
// injection when echoed into exports and storage keys.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No path traversal sequences (.., //)
//   - No backslashes
//   - No absolute paths
//   - Maximum length of 500 characters
//
// The "ext:" prefix used for external dependency nodes is allowed.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	const maxIDLength = 500
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidNodeID, "node id contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(id, "/") {
		return New(ErrCodeInvalidNodeID, "node id must be relative (cannot start with /)")
	}

	return nil
}

// ValidateSessionID validates a session identifier from a client. Session
// ids are opaque URL-safe tokens; anything else is rejected before it
// reaches a storage backend.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}

	const maxSessionIDLength = 128
	if len(id) > maxSessionIDLength {
		return New(ErrCodeInvalidInput, "session id too long (max %d characters)", maxSessionIDLength)
	}

	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '=':
		default:
			return New(ErrCodeInvalidInput, "session id contains invalid character %q", r)
		}
	}

	return nil
}

// ValidateSnapshotKey validates a snapshot content-hash key. Keys are
// lowercase hex digests.
func ValidateSnapshotKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "snapshot key cannot be empty")
	}

	const digestLength = 64 // hex-encoded SHA-256
	if len(key) != digestLength {
		return New(ErrCodeInvalidInput, "snapshot key must be %d hex characters", digestLength)
	}

	for _, r := range key {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return New(ErrCodeInvalidInput, "snapshot key must be lowercase hex")
		}
	}

	return nil
}
