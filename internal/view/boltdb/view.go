package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/saimonmoore/experiment-autobee/internal/view"
)

// View is the BoltDB-backed materialized view of one namespace
type View struct {
	storage   *Storage
	namespace string
	bucket    []byte
}

var _ view.View = (*View)(nil)

// Namespace returns the namespace the view belongs to
func (v *View) Namespace() string {
	return v.namespace
}

// Get retrieves a committed entry by key
func (v *View) Get(ctx context.Context, key string) (*view.Node, error) {
	var node *view.Node

	err := v.storage.read(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(v.bucket)
		if bucket == nil {
			return view.ErrNotFound
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return view.ErrNotFound
		}

		// bbolt memory is only valid inside the transaction
		node = &view.Node{Key: key, Value: append(json.RawMessage(nil), data...)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return node, nil
}

// List returns committed entries with the given key prefix, ordered by key
func (v *View) List(ctx context.Context, prefix string) ([]*view.Node, error) {
	nodes := []*view.Node{}

	err := v.storage.read(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(v.bucket)
		if bucket == nil {
			return nil
		}

		p := []byte(prefix)
		c := bucket.Cursor()
		for k, data := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, data = c.Next() {
			nodes = append(nodes, &view.Node{
				Key:   string(k),
				Value: append(json.RawMessage(nil), data...),
			})
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return nodes, nil
}

// Cursor returns the last committed log position of the namespace
func (v *View) Cursor(ctx context.Context) ([]byte, error) {
	var cursor []byte

	err := v.storage.read(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(v.cursorKey())
		if data != nil {
			cursor = append([]byte(nil), data...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cursor, nil
}

// NewBatch opens an empty write batch
func (v *View) NewBatch() view.WriteBatch {
	return &Batch{
		view: v,
		puts: make(map[string][]byte),
	}
}

func (v *View) cursorKey() []byte {
	return []byte("cursor:" + v.namespace)
}

// Batch buffers writes in memory until Flush. Reads see the buffered
// writes first and fall through to the committed view.
type Batch struct {
	view   *View
	puts   map[string][]byte
	reset  bool
	cursor []byte
}

// Get returns the staged or committed entry for key
func (b *Batch) Get(ctx context.Context, key string) (*view.Node, error) {
	if data, ok := b.puts[key]; ok {
		return &view.Node{Key: key, Value: append(json.RawMessage(nil), data...)}, nil
	}

	// После Reset старое содержимое считается удаленным
	if b.reset {
		return nil, view.ErrNotFound
	}

	return b.view.Get(ctx, key)
}

// Put stages the JSON encoding of value under key
func (b *Batch) Put(ctx context.Context, key string, value any) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal view entry: %w", err)
	}

	b.puts[key] = data
	return nil
}

// Reset marks the whole namespace for deletion and drops staged writes
func (b *Batch) Reset() {
	b.reset = true
	b.puts = make(map[string][]byte)
}

// SetCursor stages the log position reached by the batch
func (b *Batch) SetCursor(cursor []byte) {
	b.cursor = append([]byte(nil), cursor...)
}

// Flush commits staged writes and cursor in a single transaction
func (b *Batch) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	keys := make([]string, 0, len(b.puts))
	for k := range b.puts {
		keys = append(keys, k)
	}
	// bbolt вставляет быстрее в отсортированном порядке
	sort.Strings(keys)

	err := b.view.storage.write(func(tx *bbolt.Tx) error {
		if b.reset && tx.Bucket(b.view.bucket) != nil {
			if err := tx.DeleteBucket(b.view.bucket); err != nil {
				return fmt.Errorf("failed to reset view: %w", err)
			}
		}

		bucket, err := tx.CreateBucketIfNotExists(b.view.bucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		for _, k := range keys {
			if err := bucket.Put([]byte(k), b.puts[k]); err != nil {
				return fmt.Errorf("failed to save entry %q: %w", k, err)
			}
		}

		if b.cursor != nil {
			if err := tx.Bucket(bucketMeta).Put(b.view.cursorKey(), b.cursor); err != nil {
				return fmt.Errorf("failed to save cursor: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to flush batch: %w", err)
	}

	b.puts = make(map[string][]byte)
	b.reset = false
	b.cursor = nil

	return nil
}
