package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/Uzinex/Boost/internal/adapters/cache"
	eventadapter "github.com/Uzinex/Boost/internal/adapters/events"
	httpadapter "github.com/Uzinex/Boost/internal/adapters/http"
	"github.com/Uzinex/Boost/internal/adapters/postgres"
	"github.com/Uzinex/Boost/internal/application"
	"github.com/Uzinex/Boost/internal/domain"
	"github.com/Uzinex/Boost/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	store := cacheadapter.NewRedisStore(redisClient, cacheadapter.RedisStoreOptions{
		OpTimeout:  cfg.CacheOpTimeout,
		Attempts:   cfg.CacheAttempts,
		RetryDelay: cfg.CacheRetryDelay,
	})
	guard := cacheadapter.NewTokenGuard(store, cacheadapter.TokenGuardOptions{TTL: cfg.IdempotencyTTL})
	limiter := cacheadapter.NewWindowLimiter(store, cacheadapter.WindowLimiterOptions{
		Limit:    cfg.RateLimit,
		Window:   cfg.RateWindow,
		FailOpen: cfg.RateFailOpen,
	})

	notifier := ports.Notifier(eventadapter.NewLoggingNotifier(logger))
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier, pubErr := eventadapter.NewKafkaNotifier(cfg.KafkaBrokers, cfg.TopicTransactionCommitted)
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka notifier disabled, using logging notifier", "error", pubErr)
		} else {
			notifier = kafkaNotifier
		}
	}

	repos := postgres.NewRepositories(db)
	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:  cfg.ServiceID,
			HistoryLimit: cfg.HistoryLimit,
		},
		UnitOfWork:   postgres.NewUnitOfWork(db),
		Accounts:     repos.Accounts,
		Transactions: repos.Transactions,
		Rules:        domain.NewRules(cfg.Limits),
		Guard:        guard,
		Limiter:      limiter,
		Notifier:     notifier,
	})

	handler := httpadapter.NewHandler(
		httpadapter.ComponentCheck{Name: "postgres", Check: sqlDB.PingContext},
		httpadapter.ComponentCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = notifier.Close()
		_ = store.Close()
		_ = sqlDB.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		cleanupFn: func(ctx context.Context) {
			_ = notifier.Close()
			_ = store.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

// Service exposes the ledger API for in-process callers such as the task
// reward and referral flows.
func (r *Runtime) Service() *application.Service {
	return r.service
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}
