package mneme

import "github.com/saimonmoore/experiment-autobee/internal/user"

// ErrAlreadyLoggedIn signup while a user session is active
var ErrAlreadyLoggedIn = user.ErrAlreadyLoggedIn
