// Package boltdb implements the materialized view on top of BoltDB.
// Every namespace (private, public) owns a data bucket; the log cursor of
// each namespace lives in the shared meta bucket so that data and cursor
// are committed in the same transaction.
package boltdb

import (
	"context"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/saimonmoore/experiment-autobee/internal/view"
)

var (
	// bucketMeta stores per-namespace cursors
	bucketMeta = []byte("meta")
)

// Storage represents the BoltDB file shared by all namespace views
type Storage struct {
	db     *bbolt.DB
	mu     sync.RWMutex
	closed bool
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	return s.db.Close()
}

// View returns the view of the given namespace. The data bucket is created
// lazily on the first flush.
func (s *Storage) View(namespace string) *View {
	return &View{
		storage:   s,
		namespace: namespace,
		bucket:    []byte("view:" + namespace),
	}
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketMeta); err != nil {
			return fmt.Errorf("failed to create meta bucket: %w", err)
		}

		return nil
	})
}

// read runs fn in a read-only transaction unless the storage is closed
func (s *Storage) read(fn func(tx *bbolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return view.ErrClosed
	}

	return s.db.View(fn)
}

// write runs fn in a read-write transaction unless the storage is closed
func (s *Storage) write(fn func(tx *bbolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return view.ErrClosed
	}

	return s.db.Update(fn)
}
