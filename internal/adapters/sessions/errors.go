package sessions

import "errors"

// ErrNotFound is returned for unknown, expired or foreign sessions.
var ErrNotFound = errors.New("session not found")
