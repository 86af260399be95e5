package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saimonmoore/experiment-autobee/internal/view"
)

func TestView_GetNotFound(t *testing.T) {
	v := newTestStorage(t).View("private")

	_, err := v.Get(context.Background(), "users!missing")
	assert.ErrorIs(t, err, view.ErrNotFound)
}

func TestView_EmptyCursor(t *testing.T) {
	v := newTestStorage(t).View("private")

	cursor, err := v.Cursor(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestBatch_ReadYourWrites(t *testing.T) {
	ctx := context.Background()
	v := newTestStorage(t).View("private")

	b := v.NewBatch()
	require.NoError(t, b.Put(ctx, "records!1", map[string]string{"url": "http://x"}))

	node, err := b.Get(ctx, "records!1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"http://x"}`, string(node.Value))

	// До Flush запись не видна снаружи
	_, err = v.Get(ctx, "records!1")
	assert.ErrorIs(t, err, view.ErrNotFound)

	require.NoError(t, b.Flush(ctx))

	node, err = v.Get(ctx, "records!1")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, node.Decode(&got))
	assert.Equal(t, "http://x", got["url"])
}

func TestBatch_FallsThroughToCommitted(t *testing.T) {
	ctx := context.Background()
	v := newTestStorage(t).View("private")

	b := v.NewBatch()
	require.NoError(t, b.Put(ctx, "k", 1))
	require.NoError(t, b.Flush(ctx))

	b = v.NewBatch()
	node, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", string(node.Value))
}

func TestBatch_Reset(t *testing.T) {
	ctx := context.Background()
	v := newTestStorage(t).View("private")

	b := v.NewBatch()
	require.NoError(t, b.Put(ctx, "users!a", 1))
	require.NoError(t, b.Put(ctx, "users!b", 2))
	b.SetCursor([]byte("old"))
	require.NoError(t, b.Flush(ctx))

	b = v.NewBatch()
	b.Reset()

	_, err := b.Get(ctx, "users!a")
	assert.ErrorIs(t, err, view.ErrNotFound, "reset batch must not read old state")

	require.NoError(t, b.Put(ctx, "users!c", 3))
	b.SetCursor([]byte("new"))
	require.NoError(t, b.Flush(ctx))

	nodes, err := v.List(ctx, "users!")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "users!c", nodes[0].Key)

	cursor, err := v.Cursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", string(cursor))
}

func TestBatch_ResetOnEmptyView(t *testing.T) {
	ctx := context.Background()
	v := newTestStorage(t).View("public")

	b := v.NewBatch()
	b.Reset()
	require.NoError(t, b.Flush(ctx))

	nodes, err := v.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestBatch_PutEmptyKey(t *testing.T) {
	b := newTestStorage(t).View("private").NewBatch()

	assert.Error(t, b.Put(context.Background(), "", 1))
}

func TestBatch_PutUnmarshalable(t *testing.T) {
	b := newTestStorage(t).View("private").NewBatch()

	assert.Error(t, b.Put(context.Background(), "k", make(chan int)))
}

func TestView_ListPrefixAndOrder(t *testing.T) {
	ctx := context.Background()
	v := newTestStorage(t).View("private")

	b := v.NewBatch()
	for _, k := range []string{"records!b", "users!x", "records!a", "records!c"} {
		require.NoError(t, b.Put(ctx, k, k))
	}
	require.NoError(t, b.Flush(ctx))

	nodes, err := v.List(ctx, "records!")
	require.NoError(t, err)

	keys := make([]string, 0, len(nodes))
	for _, n := range nodes {
		keys = append(keys, n.Key)
	}
	assert.Equal(t, []string{"records!a", "records!b", "records!c"}, keys)
}

func TestView_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	b := s.View("private").NewBatch()
	require.NoError(t, b.Put(ctx, "records!a", 1))
	b.SetCursor([]byte("p"))
	require.NoError(t, b.Flush(ctx))

	_, err := s.View("public").Get(ctx, "records!a")
	assert.ErrorIs(t, err, view.ErrNotFound)

	cursor, err := s.View("public").Cursor(ctx)
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestBatch_FlushCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := newTestStorage(t).View("private").NewBatch()
	require.NoError(t, b.Put(context.Background(), "k", 1))
	assert.ErrorIs(t, b.Flush(ctx), context.Canceled)
}
