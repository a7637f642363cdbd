package repository

import "github.com/agrisiti/agrikit/pkg/logger"

type settings struct {
	logger logger.Logger
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
