package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/saimonmoore/experiment-autobee/internal/view"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), filepath.Join(t.TempDir(), "view.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestNew_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "testdb.db")

	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() {
		require.NoError(t, store.Close())
	}()

	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	err = store.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketMeta) == nil {
			return os.ErrNotExist
		}
		return nil
	})
	require.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "missing", "view.db"))
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestClose(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "testdb.db"))
	require.NoError(t, err)

	require.NoError(t, store.Close())
	// Повторное закрытие безопасно
	require.NoError(t, store.Close())

	v := store.View("private")
	_, err = v.Get(context.Background(), "k")
	assert.ErrorIs(t, err, view.ErrClosed)

	_, err = v.List(context.Background(), "")
	assert.ErrorIs(t, err, view.ErrClosed)

	_, err = v.Cursor(context.Background())
	assert.ErrorIs(t, err, view.ErrClosed)

	b := v.NewBatch()
	require.NoError(t, b.Put(context.Background(), "k", "v"))
	assert.ErrorIs(t, b.Flush(context.Background()), view.ErrClosed)
}

func TestReopen_PersistsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "view.db")

	store, err := New(ctx, dbPath)
	require.NoError(t, err)

	b := store.View("private").NewBatch()
	require.NoError(t, b.Put(ctx, "users!a", map[string]string{"email": "a@b.com"}))
	b.SetCursor([]byte(`{"count":1}`))
	require.NoError(t, b.Flush(ctx))
	require.NoError(t, store.Close())

	store, err = New(ctx, dbPath)
	require.NoError(t, err)
	defer store.Close()

	node, err := store.View("private").Get(ctx, "users!a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@b.com"}`, string(node.Value))

	cursor, err := store.View("private").Cursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"count":1}`, string(cursor))
}
