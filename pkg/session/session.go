// Package session persists exploration sessions: the filter state, layout
// mode, and camera pose a user left a graph in, so a later visit resumes
// where they stopped.
//
// The Store interface has implementations for different backends:
//   - memory: In-process storage for development/testing
//   - redis: Redis-backed storage for multi-instance deployments
//   - file: File-based storage for CLI use
//
// # Architecture
//
// Sessions expire after a TTL. The Store interface supports:
//   - Get/Set/Delete operations
//   - Automatic expiration checking
//   - Cleanup of expired sessions
//
// # Usage
//
// Create a session store:
//
//	// Development
//	store := session.NewMemoryStore()
//
//	// Production
//	store, err := session.NewRedisStore(ctx, session.RedisConfig{
//	    Addr: "localhost:6379",
//	})
//
//	// CLI
//	store, err := session.NewFileStore("")  // Uses ~/.config/depspace/sessions/
//
// Manage sessions:
//
//	sess := session.New(state, pose, session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, sessionID)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Session not found or expired
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/codegnosis/depspace/pkg/camera"
	"github.com/codegnosis/depspace/pkg/encode"
	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/layout"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Session stores one user's exploration state for one graph.
type Session struct {
	ID        string           `json:"id"`
	GraphKey  string           `json:"graph_key"`
	State     filter.State     `json:"state"`
	Mode      layout.Mode      `json:"mode"`
	ColorMode encode.ColorMode `json:"color_mode"`
	Camera    camera.Pose      `json:"camera"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for backends with
	// native TTL support).
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 30 * 24 * time.Hour

// New creates a session capturing the given exploration state.
func New(graphKey string, state filter.State, mode layout.Mode, colorMode encode.ColorMode, pose camera.Pose, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		GraphKey:  graphKey,
		State:     state,
		Mode:      mode,
		ColorMode: colorMode,
		Camera:    pose,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}
