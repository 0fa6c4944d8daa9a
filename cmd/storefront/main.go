package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/cache"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/httpapi"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/migrations"
	"github.com/nikolayk812/storefront/internal/notify"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("storefront stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping: %w", err)
	}

	if err := migrations.Up(ctx, pool); err != nil {
		return fmt.Errorf("migrations.Up: %w", err)
	}
	logger.Info("database migrated")

	m := metrics.New()

	var cartCache port.CartCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		cartCache = cache.NewRedisCartCache(client, cfg.CartCacheTTL)
		logger.Info("cart cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	var inner port.Notifier = notify.NewLogNotifier(cfg.AdminEmail, logger)
	if cfg.KafkaBrokers != "" {
		writer := notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
		defer writer.Close()

		inner = notify.NewKafkaNotifier(writer, cfg.AdminEmail, notify.DefaultBreakerSettings(), logger)
		logger.Info("order events go to kafka", zap.String("topic", cfg.KafkaOrdersTopic))
	}
	dispatcher := notify.NewDispatcher(inner, cfg.NotificationTimeout, logger, notify.WithFailureHook(m.NotificationFailed))

	uow := repository.NewUnitOfWork(pool, cfg.TxTimeout)
	carts := repository.NewCart(pool)

	handler := httpapi.NewHandler(
		service.NewCartService(uow, carts, cartCache, logger),
		service.NewCheckoutService(uow, dispatcher, cartCache, m, logger),
		service.NewFulfillmentService(uow, m, logger),
		service.NewOrderService(repository.NewOrder(pool), cfg.ShippingCost),
		service.NewCatalogService(repository.NewCatalog(pool)),
		cfg.Currency,
		logger,
	)

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: httpapi.NewRouter(handler, httpapi.NewAuthenticator(cfg.JWTSecret), httpapi.RouterConfig{
			RequestTimeout: cfg.RequestTimeout,
			Metrics:        m.Handler(),
			Observer:       m,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("srv.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return errors.Join(srv.Shutdown(shutdownCtx), dispatcher.Close(shutdownCtx))
}
