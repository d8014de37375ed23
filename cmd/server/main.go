package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcadapter "github.com/simaogato/savings-splitter/internal/adapter/grpc"
	"github.com/simaogato/savings-splitter/internal/adapter/repository/memory"
	"github.com/simaogato/savings-splitter/internal/adapter/repository/postgres"
	"github.com/simaogato/savings-splitter/internal/auth"
	"github.com/simaogato/savings-splitter/internal/config"
	"github.com/simaogato/savings-splitter/internal/domain"
	"github.com/simaogato/savings-splitter/internal/usecase/account"
	"github.com/simaogato/savings-splitter/internal/usecase/dashboard"
	"github.com/simaogato/savings-splitter/internal/usecase/funds"
	"github.com/simaogato/savings-splitter/internal/usecase/rules"
	"github.com/simaogato/savings-splitter/internal/usecase/scheme"
	"github.com/simaogato/savings-splitter/internal/usecase/seeder"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 1. Setup the ledger store
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// 2. Initialize Services (Use Cases)
	accountService := account.NewAccountService(store, logger)
	schemeService := scheme.NewSchemeService(store, logger)
	ruleService := rules.NewRuleService(store, logger)
	fundsService := funds.NewFundsService(store, rules.NewResolver(logger), logger)
	dashboardService := dashboard.NewDashboardService(store)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)

	// 3. Seed the demo user, if configured
	if cfg.SeedDemoUser != uuid.Nil {
		if err := seeder.NewDemoSeeder(store, logger).Seed(ctx, cfg.SeedDemoUser); err != nil {
			return fmt.Errorf("failed to seed demo user: %w", err)
		}
		token, err := tokens.GenerateToken(cfg.SeedDemoUser)
		if err != nil {
			return fmt.Errorf("failed to issue demo token: %w", err)
		}
		logger.Info("demo user seeded", "user_id", cfg.SeedDemoUser)
		logger.Debug("demo user token", "token", token)
	}

	// 4. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(logger),
			grpcadapter.AuthInterceptor(tokens),
		),
	)

	grpcAdapter := grpcadapter.NewServer(accountService, fundsService, schemeService, ruleService, dashboardService)
	grpcadapter.RegisterSavingsServiceServer(grpcServer, grpcAdapter)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr, "store", cfg.StoreDriver)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpclib.ErrServerStopped) {
			return fmt.Errorf("failed to serve gRPC server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		healthServer.Shutdown()
		waitForShutdown(grpcServer, logger)
		return nil
	})

	return g.Wait()
}

// waitForShutdown stops the server gracefully, forcing it after shutdownTimeout
func waitForShutdown(grpcServer *grpclib.Server, logger *slog.Logger) {
	logger.Info("shutting down gracefully")

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		logger.Warn("graceful shutdown timed out, forcing stop")
		grpcServer.Stop()
	}
	logger.Info("gRPC server stopped")
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// openStore returns the configured ledger store and a function releasing it
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (domain.Store, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store, data is lost on exit")
		return memory.NewStore(cfg.TxTimeout), func() {}, nil
	}

	db, err := connect(ctx, cfg.DBConnStr, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	store := postgres.NewStore(db,
		postgres.WithTxTimeout(cfg.TxTimeout),
		postgres.WithMaxRetries(cfg.TxMaxRetries),
		postgres.WithLogger(logger),
	)
	return store, func() { _ = db.Close() }, nil
}

// connect waits for Postgres to accept connections, which matters when both start together
func connect(ctx context.Context, connStr string, logger *slog.Logger) (*postgres.DB, error) {
	var db *postgres.DB
	backoff := retry.WithMaxRetries(10, retry.NewConstant(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		db, err = postgres.NewDB(ctx, connStr)
		if err != nil {
			logger.Warn("database not ready, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
