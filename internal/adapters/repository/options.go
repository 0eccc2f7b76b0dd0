package repository

import "github.com/okian/stride/pkg/logger"

type settings struct {
	log logger.Logger
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithLogger sets the logger used by the store.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logger.Default().Named("store")
	}
	return s
}
