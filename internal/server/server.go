// Package server assembles the HTTP router and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/apperrors"
	"github.com/lee-tech/workforce-admin/internal/logging"
	"github.com/lee-tech/workforce-admin/internal/metrics"
)

// Registrar registers a group of routes.
type Registrar interface {
	RegisterRoutes(router *mux.Router)
}

type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	Metrics         *metrics.Metrics
	MetricsPath     string
	Logger          *zap.Logger
}

type closer struct {
	name string
	fn   func() error
}

// Server owns the router, the http.Server and the resources released on
// shutdown.
type Server struct {
	router          *mux.Router
	handler         http.Handler
	httpServer      *http.Server
	shutdownTimeout time.Duration
	closers         []closer
	logger          *zap.Logger
}

func New(opts Options, registrars ...Registrar) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	middlewares := []mux.MiddlewareFunc{logging.Middleware(logger)}
	if opts.Metrics != nil {
		middlewares = append(middlewares, opts.Metrics.Middleware)
	}

	router := mux.NewRouter()
	router.Use(middlewares...)

	if opts.Metrics != nil && opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, opts.Metrics.Handler()).Methods(http.MethodGet).Name("metrics")
	}
	for _, registrar := range registrars {
		if registrar != nil {
			registrar.RegisterRoutes(router)
		}
	}

	// Router middleware only runs for matched routes.
	var notFound http.Handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apperrors.NotFound("route").WriteHTTP(w)
	})
	var notAllowed http.Handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		(&apperrors.Error{
			Status:  http.StatusMethodNotAllowed,
			Code:    apperrors.CodeBadRequest,
			Message: "Method not allowed",
		}).WriteHTTP(w)
	})
	for i := len(middlewares) - 1; i >= 0; i-- {
		notFound = middlewares[i](notFound)
		notAllowed = middlewares[i](notAllowed)
	}
	router.NotFoundHandler = notFound
	router.MethodNotAllowedHandler = notAllowed

	handler := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", logging.HeaderRequestID},
		ExposedHeaders:   []string{logging.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler(router)

	return &Server{
		router:  router,
		handler: handler,
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      opts.WriteTimeout,
		},
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          logger,
	}
}

func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler is the full handler chain, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// OnShutdown registers fn to run after the HTTP server stops. Closers run in
// reverse registration order.
func (s *Server) OnShutdown(name string, fn func() error) {
	if fn == nil {
		return
	}
	s.closers = append(s.closers, closer{name: name, fn: fn})
}

// Run serves until ctx ends or the listener fails, then shuts down and
// releases every registered resource.
func (s *Server) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	var err error
	select {
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			err = fmt.Errorf("shutdown http server: %w", shutdownErr)
		}
		cancel()
	case serveResult := <-serveErr:
		if !errors.Is(serveResult, http.ErrServerClosed) {
			err = fmt.Errorf("serve http: %w", serveResult)
		}
	}

	return multierr.Append(err, s.Close())
}

// Close runs the registered closers and combines their errors.
func (s *Server) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if closeErr := c.fn(); closeErr != nil {
			s.logger.Warn("failed to release resource", zap.String("resource", c.name), zap.Error(closeErr))
			err = multierr.Append(err, fmt.Errorf("close %s: %w", c.name, closeErr))
		}
	}
	s.closers = nil
	return err
}
