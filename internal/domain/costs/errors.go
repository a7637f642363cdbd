package costs

import "errors"

var (
	// ErrUnknownDomain is returned when a domain other than rice or fish is requested.
	ErrUnknownDomain = errors.New("unknown cost domain")
	// ErrNoDomain is returned when a summary is requested before any domain was loaded.
	ErrNoDomain = errors.New("no cost domain loaded")
)
