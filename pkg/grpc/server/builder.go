package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const defaultPort = 50051

type Option func(*config)

type config struct {
	port       int
	listener   net.Listener
	logger     *zap.Logger
	reflection bool
	logging    bool
	observer   RPCObserver
}

// WithPort sets the TCP port. Port 0 picks a free port.
func WithPort(port int) Option {
	return func(c *config) { c.port = port }
}

// WithListener serves on lis instead of opening a TCP port.
func WithListener(lis net.Listener) Option {
	return func(c *config) { c.listener = lis }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithReflection exposes the reflection service for grpcurl and similar
// tools. Off by default.
func WithReflection(enabled bool) Option {
	return func(c *config) { c.reflection = enabled }
}

// WithLogging logs one line per RPC.
func WithLogging(enabled bool) Option {
	return func(c *config) { c.logging = enabled }
}

// WithObserver records per-RPC outcome and latency.
func WithObserver(obs RPCObserver) Option {
	return func(c *config) { c.observer = obs }
}

// Server owns the listener, the gRPC server and the health service for the
// services registered on it.
type Server struct {
	grpcServer   *grpc.Server
	lis          net.Listener
	logger       *zap.Logger
	healthServer *health.Server

	mu       sync.Mutex
	services []string
}

// New listens and builds the server. The chain always starts with panic
// recovery and request ids; metrics and logging follow when enabled.
func New(opts ...Option) (*Server, error) {
	cfg := config{port: defaultPort}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lis, err := listen(cfg)
	if err != nil {
		return nil, err
	}

	chain := []grpc.UnaryServerInterceptor{
		RecoveryInterceptor(logger),
		RequestIDInterceptor(),
	}
	if cfg.observer != nil {
		chain = append(chain, MetricsInterceptor(cfg.observer))
	}
	if cfg.logging {
		chain = append(chain, LoggingInterceptor(logger))
	}

	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	if cfg.reflection {
		reflection.Register(gs)
	}

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{
		grpcServer:   gs,
		lis:          lis,
		logger:       logger.Named("grpc-server"),
		healthServer: hs,
	}, nil
}

func listen(cfg config) (net.Listener, error) {
	if cfg.listener != nil {
		return cfg.listener, nil
	}
	if cfg.port < 0 || cfg.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", cfg.port)
	}
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", cfg.port, err)
	}
	return lis, nil
}

// RegisterServiceWithHealth registers a service and reports it as serving.
func (s *Server) RegisterServiceWithHealth(serviceName string, register func(s *grpc.Server)) {
	register(s.grpcServer)

	s.mu.Lock()
	s.services = append(s.services, serviceName)
	s.mu.Unlock()

	s.healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("service registered", zap.String("service", serviceName))
}

// Start serves in the background.
func (s *Server) Start() {
	s.logger.Info("gRPC server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		if err := s.grpcServer.Serve(s.lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			s.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()
}

// Shutdown reports every registered service as not serving, then drains
// in-flight RPCs. When ctx expires first the remaining RPCs are cut off and
// ctx's error is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	services := append([]string{""}, s.services...)
	s.mu.Unlock()
	for _, name := range services {
		s.healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}
	s.logger.Info("gRPC server draining", zap.Int("services", len(services)-1))

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("gRPC drain timed out, stopping")
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
