// Package record indexes and appends saved links. Records are immutable:
// the first createRecord for a url wins.
package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saimonmoore/experiment-autobee/internal/models"
	"github.com/saimonmoore/experiment-autobee/internal/view"
)

// Indexer materializes records
type Indexer struct {
	logger *slog.Logger
}

// NewIndexer создает индексатор записей
func NewIndexer(logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Indexer{logger: logger}
}

// Handles reports interest in createRecord
func (i *Indexer) Handles(opType models.OperationType) bool {
	return opType == models.OperationCreateRecord
}

// HandleOperation writes {record} unless the key is already present
func (i *Indexer) HandleOperation(ctx context.Context, batch view.Batch, op *models.Operation) error {
	if op.Record == nil {
		i.logger.WarnContext(ctx, "record operation without record", "type", op.Type)
		return nil
	}

	r := models.RecordFromProperties(*op.Record)
	key := r.Key()

	_, err := batch.Get(ctx, key)
	switch {
	case err == nil:
		i.logger.DebugContext(ctx, "record already exists", "key", key)
		return nil
	case !errors.Is(err, view.ErrNotFound):
		return fmt.Errorf("failed to load record %s: %w", key, err)
	}

	if err := batch.Put(ctx, key, models.RecordEntry{Record: r.ToProperties()}); err != nil {
		return fmt.Errorf("failed to index record %s: %w", key, err)
	}

	i.logger.DebugContext(ctx, "record indexed", "key", key)

	return nil
}
