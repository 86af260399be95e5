// Package view defines the materialized key-value view that replicated
// stores build by replaying their operation log.
package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Common view errors
var (
	// ErrNotFound indicates that the key is absent from the view
	ErrNotFound = errors.New("view entry not found")

	// ErrClosed indicates that the view storage is closed
	ErrClosed = errors.New("view storage is closed")
)

// Node is one key/value pair of the materialized view.
type Node struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Decode unmarshals the node value into v.
func (n *Node) Decode(v any) error {
	if err := json.Unmarshal(n.Value, v); err != nil {
		return fmt.Errorf("failed to decode view entry %q: %w", n.Key, err)
	}

	return nil
}

// Batch is what indexers see while an apply pass is in flight: reads observe
// the batch's own uncommitted writes, nothing is visible to other readers
// until the batch is flushed.
type Batch interface {
	// Get returns the entry for key or ErrNotFound
	Get(ctx context.Context, key string) (*Node, error)

	// Put stages value (JSON-encoded) under key
	Put(ctx context.Context, key string, value any) error
}

// WriteBatch is a Batch owned by the apply function.
type WriteBatch interface {
	Batch

	// Reset discards the current view contents when flushed (full replay)
	Reset()

	// SetCursor stages the log position reached by this batch
	SetCursor(cursor []byte)

	// Flush atomically commits staged writes and the cursor
	Flush(ctx context.Context) error
}

// View is the read side of a namespace's materialized view plus a factory
// for write batches.
type View interface {
	// Get returns the committed entry for key or ErrNotFound
	Get(ctx context.Context, key string) (*Node, error)

	// List returns committed entries whose key starts with prefix, ordered by key
	List(ctx context.Context, prefix string) ([]*Node, error)

	// Cursor returns the last committed log position (nil if nothing applied yet)
	Cursor(ctx context.Context) ([]byte, error)

	// NewBatch opens a buffered write batch
	NewBatch() WriteBatch
}
