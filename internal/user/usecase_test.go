package user

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saimonmoore/experiment-autobee/internal/models"
	"github.com/saimonmoore/experiment-autobee/internal/view"
)

const localKey = "local-writer"

// indexedStore returns a StoreMock whose appends go straight through the
// user indexer into an in-memory view
func indexedStore() (*StoreMock, *memBatch) {
	batch := newMemBatch()
	idx := NewIndexer(testLogger())

	return &StoreMock{
		AppendOperationFunc: func(ctx context.Context, op *models.Operation) error {
			return idx.HandleOperation(ctx, batch, op)
		},
		GetFunc: func(ctx context.Context, key string) (*view.Node, error) {
			return batch.Get(ctx, key)
		},
		LocalKeyFunc: func() string { return localKey },
	}, batch
}

func TestUseCase_Signup(t *testing.T) {
	ctx := context.Background()
	store, batch := indexedStore()
	uc := NewUseCase(store, testLogger())

	assert.False(t, uc.LoggedIn())
	assert.Nil(t, uc.LoggedInUser())

	u := models.NewUser("a@b.com", "alice")
	require.NoError(t, uc.Signup(ctx, u))

	assert.True(t, uc.LoggedIn())
	assert.Equal(t, []string{localKey}, uc.LoggedInUser().Writers())

	calls := store.AppendOperationCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, models.OperationCreateUser, calls[0].Op.Type)
	assert.Equal(t, []string{localKey}, calls[0].Op.Writers)

	assert.Equal(t, []string{localKey}, batch.user(t, u.Key()).Writers)
}

func TestUseCase_SignupErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid user", func(t *testing.T) {
		store, _ := indexedStore()
		uc := NewUseCase(store, testLogger())

		assert.Error(t, uc.Signup(ctx, models.NewUser("not-an-email", "alice")))
		assert.Error(t, uc.Signup(ctx, nil))
		assert.Empty(t, store.AppendOperationCalls())
		assert.False(t, uc.LoggedIn())
	})

	t.Run("append fails", func(t *testing.T) {
		store := &StoreMock{
			AppendOperationFunc: func(context.Context, *models.Operation) error { return errors.New("not writable") },
			LocalKeyFunc:        func() string { return localKey },
		}
		uc := NewUseCase(store, testLogger())

		assert.ErrorContains(t, uc.Signup(ctx, models.NewUser("a@b.com", "alice")), "not writable")
		assert.False(t, uc.LoggedIn())
	})
}

func TestUseCase_SignupIfLoggedOut(t *testing.T) {
	ctx := context.Background()
	store, _ := indexedStore()
	uc := NewUseCase(store, testLogger())

	const signups = 10

	var (
		wg   sync.WaitGroup
		errs = make(chan error, signups)
	)
	for i := range signups {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := models.NewUser(fmt.Sprintf("user%d@b.com", i), fmt.Sprintf("user%d", i))
			errs <- uc.SignupIfLoggedOut(ctx, u)
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyLoggedIn)
	}

	assert.Equal(t, 1, ok, "exactly one concurrent signup wins")
	assert.Len(t, store.AppendOperationCalls(), 1)
	assert.True(t, uc.LoggedIn())
}

func TestUseCase_Login(t *testing.T) {
	ctx := context.Background()
	store, _ := indexedStore()

	require.NoError(t, NewUseCase(store, testLogger()).Signup(ctx, models.NewUser("a@b.com", "alice")))

	uc := NewUseCase(store, testLogger())

	t.Run("unknown user", func(t *testing.T) {
		u, err := uc.Login(ctx, models.NewUser("nobody@b.com", ""))
		require.NoError(t, err)
		assert.Nil(t, u)
		assert.False(t, uc.LoggedIn())
	})

	t.Run("known user is hydrated with writers", func(t *testing.T) {
		u, err := uc.Login(ctx, models.NewUser("a@b.com", ""))
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "alice", u.Username)
		assert.Equal(t, []string{localKey}, u.Writers())
		assert.True(t, uc.LoggedIn())
		assert.Same(t, u, uc.LoggedInUser())
	})

	t.Run("nil partial", func(t *testing.T) {
		_, err := uc.Login(ctx, nil)
		assert.Error(t, err)
	})
}

func TestUseCase_DirectLogin(t *testing.T) {
	ctx := context.Background()
	store, _ := indexedStore()
	u := models.NewUser("a@b.com", "alice")
	require.NoError(t, NewUseCase(store, testLogger()).Signup(ctx, u))

	uc := NewUseCase(store, testLogger())
	got, err := uc.DirectLogin(ctx, u.Key())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.Email, got.Email)

	t.Run("store error", func(t *testing.T) {
		failing := &StoreMock{
			GetFunc: func(context.Context, string) (*view.Node, error) { return nil, view.ErrClosed },
		}
		_, err := NewUseCase(failing, testLogger()).DirectLogin(ctx, u.Key())
		assert.ErrorIs(t, err, view.ErrClosed)
	})
}

func TestUseCase_UpdateWriter(t *testing.T) {
	ctx := context.Background()

	t.Run("not logged in", func(t *testing.T) {
		store, _ := indexedStore()
		assert.ErrorIs(t, NewUseCase(store, testLogger()).UpdateWriter(ctx, "w2"), ErrNotLoggedIn)
		assert.Empty(t, store.AppendOperationCalls())
	})

	t.Run("adds writer", func(t *testing.T) {
		store, batch := indexedStore()
		uc := NewUseCase(store, testLogger())
		u := models.NewUser("a@b.com", "alice")
		require.NoError(t, uc.Signup(ctx, u))

		require.NoError(t, uc.UpdateWriter(ctx, "w2"))

		calls := store.AppendOperationCalls()
		require.Len(t, calls, 2)
		assert.Equal(t, models.OperationUpdateUser, calls[1].Op.Type)
		assert.ElementsMatch(t, []string{localKey, "w2"}, calls[1].Op.Writers)
		assert.True(t, uc.LoggedInUser().HasWriter("w2"))
		assert.ElementsMatch(t, []string{localKey, "w2"}, batch.user(t, u.Key()).Writers)
	})

	t.Run("known writer is a no-op", func(t *testing.T) {
		store, _ := indexedStore()
		uc := NewUseCase(store, testLogger())
		require.NoError(t, uc.Signup(ctx, models.NewUser("a@b.com", "alice")))

		require.NoError(t, uc.UpdateWriter(ctx, localKey))
		assert.Len(t, store.AppendOperationCalls(), 1)
	})

	t.Run("failed append leaves session unchanged", func(t *testing.T) {
		store, _ := indexedStore()
		uc := NewUseCase(store, testLogger())
		require.NoError(t, uc.Signup(ctx, models.NewUser("a@b.com", "alice")))

		store.AppendOperationFunc = func(context.Context, *models.Operation) error { return errors.New("closed") }
		assert.Error(t, uc.UpdateWriter(ctx, "w2"))
		assert.False(t, uc.LoggedInUser().HasWriter("w2"))
	})
}

func TestUseCase_Logout(t *testing.T) {
	store, _ := indexedStore()
	uc := NewUseCase(store, testLogger())
	require.NoError(t, uc.Signup(context.Background(), models.NewUser("a@b.com", "alice")))

	uc.Logout()
	assert.False(t, uc.LoggedIn())
}
