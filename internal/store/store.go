// Package store ties a replicated log to its materialized view: operations
// appended to the log are applied, in log order, by the registered indexers.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saimonmoore/experiment-autobee/internal/metrics"
	"github.com/saimonmoore/experiment-autobee/internal/models"
	"github.com/saimonmoore/experiment-autobee/internal/oplog"
	"github.com/saimonmoore/experiment-autobee/internal/view"
)

// Store namespaces
const (
	NamespacePrivate = "private"
	NamespacePublic  = "public"
)

//go:generate moq -out indexer_mock.go . Indexer

// Indexer turns operations into view entries. Indexers only read and write
// through the batch they are given.
type Indexer interface {
	// Handles reports whether the indexer is interested in opType
	Handles(opType models.OperationType) bool

	// HandleOperation applies op to batch
	HandleOperation(ctx context.Context, batch view.Batch, op *models.Operation) error
}

// Options configures a Store
type Options struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Namespace    string    // private | public
	BootstrapKey string    // ключ чужого хранилища; пусто - устройство создает хранилище
	Indexers     []Indexer // в порядке вызова
}

// Store is one replicated namespace of the user's data
type Store struct {
	log       *oplog.Log
	view      view.View
	logger    *slog.Logger
	metrics   *metrics.Metrics
	namespace string
	indexers  []Indexer
}

// New opens the log of opts.Namespace in logs and binds it to v
func New(ctx context.Context, logs *oplog.Storage, v view.View, opts Options) (*Store, error) {
	if v == nil {
		return nil, fmt.Errorf("view cannot be nil")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Store{
		view:      v,
		logger:    opts.Logger.With("namespace", opts.Namespace),
		metrics:   opts.Metrics,
		namespace: opts.Namespace,
		indexers:  opts.Indexers,
	}

	l, err := logs.Open(ctx, opts.Namespace, opts.BootstrapKey, s, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s log: %w", opts.Namespace, err)
	}
	s.log = l

	return s, nil
}

// Start brings the view up to date with entries already in the log
func (s *Store) Start(ctx context.Context) error {
	if err := s.log.Update(ctx); err != nil {
		return fmt.Errorf("failed to start %s store: %w", s.namespace, err)
	}

	s.logger.InfoContext(ctx, "store started",
		"key", s.Key(),
		"local_key", s.LocalKey(),
		"bootstrapped", s.Bootstrapped(),
		"writable", s.Writable(),
	)

	return nil
}

// Get returns the view entry for key, or view.ErrNotFound
func (s *Store) Get(ctx context.Context, key string) (*view.Node, error) {
	return s.view.Get(ctx, key)
}

// List returns view entries whose key starts with prefix
func (s *Store) List(ctx context.Context, prefix string) ([]*view.Node, error) {
	return s.view.List(ctx, prefix)
}

// AppendOperation durably appends op and returns once it is applied locally
func (s *Store) AppendOperation(ctx context.Context, op *models.Operation) error {
	data, err := op.Encode()
	if err != nil {
		return err
	}

	if _, err := s.log.Append(ctx, oplog.KindOp, data); err != nil {
		return fmt.Errorf("failed to append %s operation: %w", op.Type, err)
	}

	return nil
}

// AddWriter grants write capability on this store to key
func (s *Store) AddWriter(ctx context.Context, key string) error {
	if err := s.log.AddWriter(ctx, key); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "writer added", "writer", key)

	return nil
}

// SignProof signs a pairing proof with this device's write slot
func (s *Store) SignProof(primaryKey, publicWriterKey string) (string, error) {
	return s.log.SignProof(primaryKey, publicWriterKey)
}

// IsWriter reports whether key may write to the log
func (s *Store) IsWriter(key string) bool { return s.log.IsWriter(key) }

// Writable reports whether this device may write
func (s *Store) Writable() bool { return s.log.Writable() }

// Bootstrapped reports whether the store was opened from another device's key
func (s *Store) Bootstrapped() bool { return s.log.Bootstrapped() }

// Key returns the hex key identifying the store
func (s *Store) Key() string { return s.log.Key() }

// LocalKey returns this device's write slot
func (s *Store) LocalKey() string { return s.log.LocalKey() }

// DiscoveryKey returns the swarm topic of the store
func (s *Store) DiscoveryKey() []byte { return s.log.DiscoveryKey() }

// Namespace returns the store namespace
func (s *Store) Namespace() string { return s.namespace }

// Replicate starts log replication over conn
func (s *Store) Replicate(ctx context.Context, conn oplog.Conn) error {
	return s.log.Replicate(ctx, conn)
}

// Destroy closes the log. The view storage is owned by the caller.
func (s *Store) Destroy() error {
	return s.log.Close()
}

// Applied returns the log position recorded with the view
func (s *Store) Applied(ctx context.Context) (oplog.Position, error) {
	cursor, err := s.view.Cursor(ctx)
	if err != nil {
		return oplog.Position{}, err
	}

	return oplog.DecodePosition(cursor)
}

// Apply runs entries through the indexers and commits the resulting view
// changes together with the new position.
func (s *Store) Apply(ctx context.Context, entries []*oplog.Entry, reset bool, to oplog.Position) error {
	batch := s.view.NewBatch()
	if reset {
		batch.Reset()
		s.metrics.ViewReset(s.namespace)
	}

	for _, e := range entries {
		// addWriter обрабатывается самим журналом
		if e.Kind != oplog.KindOp {
			continue
		}

		op, err := models.DecodeOperation(e.Value)
		if err != nil {
			// Пропуск детерминирован: все устройства пропустят ту же запись
			s.logger.WarnContext(ctx, "skipping undecodable operation", "entry", e.Key(), "error", err)
			continue
		}

		for _, idx := range s.indexers {
			if !idx.Handles(op.Type) {
				continue
			}
			if err := idx.HandleOperation(ctx, batch, op); err != nil {
				return fmt.Errorf("failed to index %s at %s: %w", op.Type, e.Key(), err)
			}
		}

		s.metrics.OperationApplied(s.namespace, string(op.Type))
	}

	cursor, err := to.Encode()
	if err != nil {
		return err
	}
	batch.SetCursor(cursor)

	return batch.Flush(ctx)
}
