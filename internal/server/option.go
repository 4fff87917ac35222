package server

import (
	"github.com/cirruslabs/etagd/internal/server/token"
	"go.uber.org/zap"
)

type Option func(server *Server)

// WithTokenManager requires all API requests to carry a token issued by the manager.
func WithTokenManager(tokenManager *token.Manager) Option {
	return func(server *Server) {
		server.tokenManager = tokenManager
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(server *Server) {
		server.logger = logger
	}
}
