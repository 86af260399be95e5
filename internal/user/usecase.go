package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/saimonmoore/experiment-autobee/internal/models"
	"github.com/saimonmoore/experiment-autobee/internal/view"
)

//go:generate moq -out store_mock.go . Store

// Store is the private store as seen by the user use case
type Store interface {
	Get(ctx context.Context, key string) (*view.Node, error)
	AppendOperation(ctx context.Context, op *models.Operation) error
	LocalKey() string
}

// UseCase manages the user and the per-process session. The session is
// never replicated; the view is only changed through the log.
type UseCase struct {
	store  Store
	logger *slog.Logger

	mu      sync.RWMutex
	current *models.User
}

// NewUseCase создает use case пользователя поверх private store
func NewUseCase(store Store, logger *slog.Logger) *UseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &UseCase{store: store, logger: logger}
}

// Signup appends createUser with this device as the only writer and logs
// the user in.
func (uc *UseCase) Signup(ctx context.Context, u *models.User) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return uc.signupLocked(ctx, u)
}

// SignupIfLoggedOut is Signup that fails with ErrAlreadyLoggedIn while a
// session user is set. The check and the signup happen under one lock.
func (uc *UseCase) SignupIfLoggedOut(ctx context.Context, u *models.User) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.current != nil {
		return ErrAlreadyLoggedIn
	}

	return uc.signupLocked(ctx, u)
}

func (uc *UseCase) signupLocked(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user cannot be nil")
	}
	if err := u.Validate(); err != nil {
		return err
	}

	writers := []string{uc.store.LocalKey()}
	if err := uc.store.AppendOperation(ctx, models.NewCreateUserOperation(u, writers)); err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	u.AddWriters(writers...)
	uc.current = u

	uc.logger.InfoContext(ctx, "user signed up", "user_key", u.Key(), "username", u.Username)

	return nil
}

// Login looks the user up by partial.Key(). An unknown user yields nil, nil.
func (uc *UseCase) Login(ctx context.Context, partial *models.User) (*models.User, error) {
	if partial == nil {
		return nil, fmt.Errorf("user cannot be nil")
	}

	return uc.DirectLogin(ctx, partial.Key())
}

// DirectLogin logs in the user stored under userKey. An unknown key yields
// nil, nil.
func (uc *UseCase) DirectLogin(ctx context.Context, userKey string) (*models.User, error) {
	node, err := uc.store.Get(ctx, userKey)
	if err != nil {
		if errors.Is(err, view.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	var entry models.UserEntry
	if err := node.Decode(&entry); err != nil {
		return nil, err
	}

	u := models.UserFromProperties(entry.User)
	u.AddWriters(entry.Writers...)
	uc.setCurrent(u)

	uc.logger.InfoContext(ctx, "user logged in", "user_key", u.Key(), "writers", len(entry.Writers))

	return u, nil
}

// UpdateWriter adds writerKey to the session user and appends updateUser.
// The session only changes once the append succeeded, so a failed call can
// simply be retried.
func (uc *UseCase) UpdateWriter(ctx context.Context, writerKey string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.current == nil {
		return ErrNotLoggedIn
	}
	if uc.current.HasWriter(writerKey) {
		return nil
	}

	next := models.NewUser(uc.current.Email, uc.current.Username)
	next.AddWriters(uc.current.Writers()...)
	next.AddWriters(writerKey)

	if err := uc.store.AppendOperation(ctx, models.NewUpdateUserOperation(next)); err != nil {
		return fmt.Errorf("failed to update writers: %w", err)
	}
	uc.current = next

	uc.logger.InfoContext(ctx, "user writer added", "user_key", next.Key(), "writer", writerKey)

	return nil
}

// LoggedIn reports whether a session user is set
func (uc *UseCase) LoggedIn() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	return uc.current != nil
}

// LoggedInUser returns the session user or nil
func (uc *UseCase) LoggedInUser() *models.User {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	return uc.current
}

// Logout clears the session
func (uc *UseCase) Logout() {
	uc.setCurrent(nil)
}

func (uc *UseCase) setCurrent(u *models.User) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.current = u
}
