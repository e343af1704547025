package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	pb "github.com/godilite/call-insights/api/v1"
	"github.com/godilite/call-insights/internal/config"
	handler "github.com/godilite/call-insights/internal/grpc"
	"github.com/godilite/call-insights/internal/httpapi"
	"github.com/godilite/call-insights/internal/repository"
	"github.com/godilite/call-insights/internal/scoring"
	"github.com/godilite/call-insights/internal/service"
	"github.com/godilite/call-insights/internal/supplier/deepgram"
	"github.com/godilite/call-insights/internal/supplier/ringba"
	"github.com/godilite/call-insights/internal/telemetry"
	"github.com/godilite/call-insights/pkg/cache"
	dbbuilder "github.com/godilite/call-insights/pkg/database"
	grpcsrv "github.com/godilite/call-insights/pkg/grpc/server"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	db         *sql.DB
	cache      *cache.Cache
	metrics    *telemetry.Metrics
	analytics  *service.AnalyticsService
	grpcServer *grpcsrv.Server
	httpServer *httpapi.Server
}

// Option overrides how NewApp binds its transports.
type Option func(*options)

type options struct {
	grpcListener net.Listener
	httpListener net.Listener
}

func WithGRPCListener(lis net.Listener) Option {
	return func(o *options) { o.grpcListener = lis }
}

func WithHTTPListener(lis net.Listener) Option {
	return func(o *options) { o.httpListener = lis }
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dialect, err := repository.ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	if err := ensureSQLiteDir(cfg.DBDriver, cfg.DBPath); err != nil {
		return nil, err
	}

	db, err := dbbuilder.Open(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	if err := repository.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver))

	a := &App{logger: logger, db: db, metrics: telemetry.New()}

	// Handlers treat a nil Cacher as "no cache"; a typed nil would not be.
	var cacher handler.Cacher
	var invalidator httpapi.CacheInvalidator
	if cfg.CacheEnabled {
		c, err := cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
			cache.WithDB(cfg.RedisDB),
		)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		a.cache = c
		cacher, invalidator = c, c
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	}

	repo := repository.NewCallRepository(db, repository.WithDialect(dialect))

	svcOpts, err := a.serviceOptions(cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.analytics = service.NewAnalyticsService(repo, logger.Named("analytics"), svcOpts...)

	grpcHandlers := handler.NewGRPCHandlers(a.analytics, cacher, logger, cfg.CacheTTL)

	grpcOpts := []grpcsrv.Option{
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithObserver(a.metrics),
	}
	if o.grpcListener != nil {
		grpcOpts = append(grpcOpts, grpcsrv.WithListener(o.grpcListener))
	}
	a.grpcServer, err = grpcsrv.New(grpcOpts...)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}
	a.grpcServer.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterCallAnalyticsServer(s, grpcHandlers)
	})

	httpOpts := []httpapi.Option{
		httpapi.WithMetricsHandler(a.metrics.Handler()),
		httpapi.WithObserver(a.metrics),
	}
	if invalidator != nil {
		httpOpts = append(httpOpts, httpapi.WithCacheInvalidator(invalidator, handler.CacheKeyPrefix))
	}
	routes := httpapi.NewHandlers(a.analytics, logger, httpOpts...).Routes()

	serverOpts := []httpapi.ServerOption{
		httpapi.WithPort(cfg.HTTPPort),
		httpapi.WithServerLogger(logger),
	}
	if o.httpListener != nil {
		serverOpts = append(serverOpts, httpapi.WithListener(o.httpListener))
	}
	a.httpServer, err = httpapi.NewServer(routes, serverOpts...)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return a, nil
}

func (a *App) serviceOptions(cfg *config.Config) ([]service.Option, error) {
	scorer := scoring.New(
		scoring.WithMinTranscriptChars(cfg.MinTranscriptChars),
		scoring.WithWeights(cfg.ScoreWeights),
		scoring.WithAgentSpeaker(cfg.AgentSpeaker),
	)
	opts := []service.Option{
		service.WithScorer(scorer),
		service.WithTelemetry(a.metrics),
		service.WithWorkers(cfg.PipelineWorkers),
		service.WithStructuralFallback(cfg.SyncStructural),
		service.WithSupplierTimeout(cfg.SupplierTimeout),
		service.WithTranscription(cfg.TranscriptionTimeout, cfg.TranscriptionConcurrency),
	}

	if cfg.RingbaConfigured() {
		rc, err := ringba.New(cfg.RingbaAccountID, cfg.RingbaAPIToken,
			ringba.WithBaseURL(cfg.RingbaBaseURL),
			ringba.WithAuthScheme(cfg.RingbaAuthScheme),
			ringba.WithObserver(a.metrics),
			ringba.WithLogger(a.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("ringba client: %w", err)
		}
		opts = append(opts, service.WithCallSupplier(rc))
	} else {
		a.logger.Warn("Ringba credentials missing; sync is disabled")
	}

	if cfg.DeepgramConfigured() {
		dg, err := deepgram.New(cfg.DeepgramAPIKey,
			deepgram.WithBaseURL(cfg.DeepgramBaseURL),
			deepgram.WithModel(cfg.DeepgramModel),
			deepgram.WithObserver(a.metrics),
			deepgram.WithLogger(a.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("deepgram client: %w", err)
		}
		opts = append(opts, service.WithTranscriptionSupplier(dg))
	} else {
		a.logger.Warn("Deepgram key missing; recorded calls stay pending")
	}
	return opts, nil
}

// ensureSQLiteDir creates the parent directory of a file-backed SQLite
// database.
func ensureSQLiteDir(driver, dsn string) error {
	if driver != "sqlite3" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	return nil
}

// Start serves both transports in the background.
func (a *App) Start() {
	a.grpcServer.Start()
	a.httpServer.Start()
}

func (a *App) GRPCAddr() net.Addr { return a.grpcServer.Addr() }

func (a *App) HTTPAddr() net.Addr { return a.httpServer.Addr() }

// Shutdown stops both transports, then releases the cache and database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("grpc shutdown: %w", err))
	}
	errs = append(errs, a.close())
	return errors.Join(errs...)
}

func (a *App) close() error {
	var errs []error
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else if err == nil {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return err
}
