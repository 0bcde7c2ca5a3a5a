// Package store persists analysis snapshots keyed by content hash, so
// re-uploading the same analyzer output reuses the stored graph instead
// of rebuilding state.
//
// Backends:
//   - memory: bounded in-process LRU for single-instance deployments
//   - mongo: MongoDB collection for durable, shared storage
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/codegnosis/depspace/pkg/model"
)

// Sentinel errors for snapshot operations.
var (
	// ErrNotFound is returned when a snapshot does not exist.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned after the store has been closed.
	ErrClosed = errors.New("store closed")
)

// Snapshot is one stored analysis run: the raw analyzer payload plus
// summary statistics of the graph built from it.
type Snapshot struct {
	Key       string         `json:"key" bson:"_id"`
	Analysis  model.Analysis `json:"analysis" bson:"analysis"`
	Stats     model.Stats    `json:"stats" bson:"stats"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
}

// Info is a snapshot listing entry without the payload.
type Info struct {
	Key       string      `json:"key" bson:"_id"`
	Stats     model.Stats `json:"stats" bson:"stats"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Get retrieves a snapshot by content-hash key.
	// Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, key string) (*Snapshot, error)

	// Put stores a snapshot under its key, replacing any previous one.
	Put(ctx context.Context, snap *Snapshot) error

	// Delete removes a snapshot. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns up to limit snapshot infos, newest first.
	List(ctx context.Context, limit int) ([]Info, error)

	// Close releases backend resources.
	Close() error
}

// Key computes the content-hash key for a raw analyzer payload.
// Returns the full 64-character hex SHA-256 digest.
func Key(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
