package user

import "errors"

var (
	// ErrNotLoggedIn indicates an operation that needs a session user
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrAlreadyLoggedIn indicates a signup while a session user is set
	ErrAlreadyLoggedIn = errors.New("already logged in")
)
