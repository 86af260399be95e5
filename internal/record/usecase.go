package record

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saimonmoore/experiment-autobee/internal/models"
)

//go:generate moq -out store_mock.go . Store

// Store is the part of a store the record use case writes to
type Store interface {
	AppendOperation(ctx context.Context, op *models.Operation) error
}

// UseCase appends records to one store
type UseCase struct {
	store  Store
	logger *slog.Logger
}

// NewUseCase создает use case записей поверх store
func NewUseCase(store Store, logger *slog.Logger) *UseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &UseCase{store: store, logger: logger}
}

// AddRecord appends createRecord for r
func (uc *UseCase) AddRecord(ctx context.Context, r *models.Record) error {
	if r == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if err := r.Validate(); err != nil {
		return err
	}

	if err := uc.store.AppendOperation(ctx, models.NewCreateRecordOperation(r)); err != nil {
		return fmt.Errorf("failed to add record: %w", err)
	}

	uc.logger.InfoContext(ctx, "record added", "key", r.Key(), "url", r.URL)

	return nil
}
