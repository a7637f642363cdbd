package matching

import "errors"

// ErrUnknownDomain is returned when a domain other than rice or fish is requested.
var ErrUnknownDomain = errors.New("unknown matching domain")
