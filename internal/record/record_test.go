package record

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saimonmoore/experiment-autobee/internal/models"
	"github.com/saimonmoore/experiment-autobee/internal/view"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memBatch is an in-memory view.Batch
type memBatch struct {
	data   map[string]json.RawMessage
	getErr error
}

func newMemBatch() *memBatch {
	return &memBatch{data: make(map[string]json.RawMessage)}
}

func (b *memBatch) Get(ctx context.Context, key string) (*view.Node, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	v, ok := b.data[key]
	if !ok {
		return nil, view.ErrNotFound
	}
	return &view.Node{Key: key, Value: v}, nil
}

func (b *memBatch) Put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	b.data[key] = data
	return nil
}

func TestIndexer_Handles(t *testing.T) {
	idx := NewIndexer(testLogger())

	assert.True(t, idx.Handles(models.OperationCreateRecord))
	assert.False(t, idx.Handles(models.OperationCreateUser))
	assert.False(t, idx.Handles(models.OperationUpdateUser))
}

func TestIndexer_FirstWriteWins(t *testing.T) {
	ctx := context.Background()
	idx := NewIndexer(testLogger())
	batch := newMemBatch()
	r := models.NewRecord("http://x")

	require.NoError(t, idx.HandleOperation(ctx, batch, models.NewCreateRecordOperation(r)))
	first := string(batch.data[r.Key()])
	assert.JSONEq(t, `{"record":{"hash":"`+r.Hash()+`","url":"http://x"}}`, first)

	// Вторая операция с тем же ключом не перезаписывает запись
	conflicting := models.NewCreateRecordOperation(r)
	conflicting.Record.Hash = "forged"
	require.NoError(t, idx.HandleOperation(ctx, batch, conflicting))

	assert.Equal(t, first, string(batch.data[r.Key()]))
	assert.Len(t, batch.data, 1)
}

func TestIndexer_OperationWithoutRecord(t *testing.T) {
	batch := newMemBatch()
	require.NoError(t, NewIndexer(testLogger()).HandleOperation(context.Background(), batch, &models.Operation{Type: models.OperationCreateRecord}))
	assert.Empty(t, batch.data)
}

func TestIndexer_BatchError(t *testing.T) {
	batch := newMemBatch()
	batch.getErr = view.ErrClosed

	err := NewIndexer(testLogger()).HandleOperation(context.Background(), batch, models.NewCreateRecordOperation(models.NewRecord("http://x")))
	assert.ErrorIs(t, err, view.ErrClosed)
}

func TestUseCase_AddRecord(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		record    *models.Record
		appendErr error
		name      string
		wantErr   bool
		wantCalls int
	}{
		{name: "valid record", record: models.NewRecord("https://example.com/a"), wantCalls: 1},
		{name: "nil record", record: nil, wantErr: true},
		{name: "invalid url", record: models.NewRecord("not a url"), wantErr: true},
		{name: "append fails", record: models.NewRecord("https://example.com"), appendErr: errors.New("not writable"), wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &StoreMock{
				AppendOperationFunc: func(context.Context, *models.Operation) error { return tt.appendErr },
			}

			err := NewUseCase(store, testLogger()).AddRecord(ctx, tt.record)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			calls := store.AppendOperationCalls()
			require.Len(t, calls, tt.wantCalls)
			if tt.wantCalls > 0 {
				assert.Equal(t, models.OperationCreateRecord, calls[0].Op.Type)
				assert.Equal(t, tt.record.URL, calls[0].Op.Record.URL)
			}
		})
	}
}
