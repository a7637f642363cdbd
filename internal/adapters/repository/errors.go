package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotFound       = errors.New("key not found")
	ErrInvalidLimit   = errors.New("invalid journal limit")
	ErrDuplicateEvent = errors.New("event already journaled")
	ErrClosed         = errors.New("store closed")
)
