package server

import (
	"context"
	"errors"
	"github.com/brpaz/echozap"
	"github.com/cirruslabs/etagd/internal/etag"
	"github.com/cirruslabs/etagd/internal/object"
	"github.com/cirruslabs/etagd/internal/opentelemetry"
	"github.com/cirruslabs/etagd/internal/server/auth"
	"github.com/cirruslabs/etagd/internal/server/token"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"net"
	"net/http"
	"strings"
	"time"
)

// Resolver is what the HTTP API exposes, see etag.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, params object.Params) etag.Info
	Fetch(ctx context.Context, params object.Params) etag.Info
	URL(params object.Params) string
}

type Server struct {
	listener   net.Listener
	httpServer *http.Server
	echo       *echo.Echo
	logger     *zap.SugaredLogger

	resolver     Resolver
	tokenManager *token.Manager

	requestsCounter metric.Int64Counter
}

func New(addr string, resolver Resolver, opts ...Option) (*Server, error) {
	server := &Server{
		resolver: resolver,
	}

	// Apply options
	for _, opt := range opts {
		opt(server)
	}

	// Apply defaults
	if server.logger == nil {
		server.logger = zap.NewNop().Sugar()
	}

	// Metrics
	var err error

	server.requestsCounter, err = opentelemetry.DefaultMeter.Int64Counter("org.cirruslabs.etagd.requests.total")
	if err != nil {
		return nil, err
	}

	// Listen on the desired port
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	server.listener = listener

	// Configure routes
	server.echo = echo.New()
	server.echo.HideBanner = true
	server.echo.HidePort = true
	server.echo.Use(echozap.ZapLogger(server.logger.Desugar()))
	server.echo.Use(server.countRequests)

	server.echo.GET("/healthz", server.healthz)

	v1 := server.echo.Group("/v1")

	if server.tokenManager != nil {
		v1.Use(auth.Middleware(server.tokenManager))
	}

	v1.GET("/etag", server.getETag)
	v1.POST("/etag", server.postETag)
	v1.POST("/etag/refresh", server.refreshETag)
	v1.GET("/url", server.getURL)

	// Configure HTTP server
	server.httpServer = &http.Server{
		Handler:           otelhttp.NewHandler(server.echo, "http.request"),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return server, nil
}

func (server *Server) Addr() string {
	return strings.ReplaceAll(server.listener.Addr().String(), "[::]", "127.0.0.1")
}

func (server *Server) Run(ctx context.Context) error {
	server.logger.Infof("listening on %s", server.Addr())

	go func() {
		<-ctx.Done()

		_ = server.httpServer.Close()
	}()

	if err := server.httpServer.Serve(server.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (server *Server) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)

		//nolint:contextcheck // request context might be already canceled
		server.requestsCounter.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("method", c.Request().Method),
			attribute.String("route", c.Path()),
			attribute.Int("status_code", c.Response().Status),
		))

		return err
	}
}
