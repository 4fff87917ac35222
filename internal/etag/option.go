package etag

import (
	"go.uber.org/zap"
	"time"
)

type Option func(resolver *Resolver)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(resolver *Resolver) {
		resolver.logger = logger
	}
}

// WithClock overrides the source of confirmation timestamps.
func WithClock(now func() time.Time) Option {
	return func(resolver *Resolver) {
		resolver.now = now
	}
}

// WithCoalescing makes concurrent remote fetches of the same object
// share a single request to the remote provider.
func WithCoalescing() Option {
	return func(resolver *Resolver) {
		resolver.coalesce = true
	}
}
