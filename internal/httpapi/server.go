package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Server struct {
	srv      *http.Server
	listener net.Listener
	logger   *zap.Logger
}

type ServerOption func(*serverOptions)

type serverOptions struct {
	port     int
	listener net.Listener
	logger   *zap.Logger
}

func WithPort(port int) ServerOption {
	return func(o *serverOptions) { o.port = port }
}

// WithListener serves on an existing listener and ignores the port.
func WithListener(lis net.Listener) ServerOption {
	return func(o *serverOptions) { o.listener = lis }
}

func WithServerLogger(logger *zap.Logger) ServerOption {
	return func(o *serverOptions) { o.logger = logger }
}

// NewServer binds the listener immediately so a bad port fails at startup.
func NewServer(handler http.Handler, opts ...ServerOption) (*Server, error) {
	o := &serverOptions{port: 8080}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	lis := o.listener
	if lis == nil {
		if o.port < 0 || o.port > 65535 {
			return nil, fmt.Errorf("invalid port: %d", o.port)
		}
		var err error
		lis, err = net.Listen("tcp", fmt.Sprintf(":%d", o.port))
		if err != nil {
			return nil, fmt.Errorf("failed to listen on port %d: %w", o.port, err)
		}
	}

	return &Server{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		listener: lis,
		logger:   o.logger.Named("http-server"),
	}, nil
}

// Start serves in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info("HTTP server listening", zap.String("address", s.listener.Addr().String()))
		if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
}

// Shutdown drains in-flight requests until ctx expires, then closes.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	if err := s.srv.Shutdown(ctx); err != nil {
		_ = s.srv.Close()
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
