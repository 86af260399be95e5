package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saimonmoore/experiment-autobee/internal/crdt"
	"github.com/saimonmoore/experiment-autobee/internal/models"
	"github.com/saimonmoore/experiment-autobee/internal/view"
)

// Indexer materializes users. Writers of repeated create/update operations
// for the same user are merged by union, so the result does not depend on
// how concurrent updates were ordered.
type Indexer struct {
	logger *slog.Logger
}

// NewIndexer создает индексатор пользователей
func NewIndexer(logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Indexer{logger: logger}
}

// Handles reports interest in createUser and updateUser
func (i *Indexer) Handles(opType models.OperationType) bool {
	return opType == models.OperationCreateUser || opType == models.OperationUpdateUser
}

// HandleOperation writes {user, writers: existing ∪ op.writers}
func (i *Indexer) HandleOperation(ctx context.Context, batch view.Batch, op *models.Operation) error {
	if op.User == nil {
		i.logger.WarnContext(ctx, "user operation without user", "type", op.Type)
		return nil
	}

	u := models.UserFromProperties(*op.User)
	key := u.Key()

	var existing models.UserEntry
	node, err := batch.Get(ctx, key)
	switch {
	case err == nil:
		if err := node.Decode(&existing); err != nil {
			return err
		}
	case !errors.Is(err, view.ErrNotFound):
		return fmt.Errorf("failed to load user %s: %w", key, err)
	}

	writers := crdt.Union(existing.Writers, op.Writers)

	if err := batch.Put(ctx, key, models.UserEntry{
		User:    u.ToProperties(),
		Writers: writers,
	}); err != nil {
		return fmt.Errorf("failed to index user %s: %w", key, err)
	}

	i.logger.DebugContext(ctx, "user indexed", "key", key, "type", op.Type, "writers", len(writers))

	return nil
}
