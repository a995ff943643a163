package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/streadway/amqp"

	"github.com/GopiRanganathan/todo/internal/config"
	"github.com/GopiRanganathan/todo/internal/consumer"
	"github.com/GopiRanganathan/todo/internal/repository"
	"github.com/GopiRanganathan/todo/internal/services"
	"github.com/GopiRanganathan/todo/pkg/logger"
	"github.com/GopiRanganathan/todo/pkg/metrics"
	"github.com/GopiRanganathan/todo/pkg/retry"
)

func main() {
	cfg, err := config.LoadConsumer()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logr := logger.New(cfg.LogLevel)
	logr.Info("starting reminder consumer", slog.String("app", cfg.AppName))

	db, err := repository.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		logr.Error("failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}

	// Left nil when REDIS_URL is unset so no token is ever suppressed.
	var cache services.TokenCache
	if cfg.RedisURL != "" {
		redisRepo := repository.NewRedisRepository(redis.NewClient(&redis.Options{Addr: cfg.RedisURL}), cfg.TokenSuppressTTL)
		defer redisRepo.Close()
		cache = redisRepo
	}

	statusStore, err := repository.NewStatusStore(db, cfg.StatusTable)
	if err != nil {
		logr.Error("failed to prepare status table", slog.Any("error", err))
		os.Exit(1)
	}
	statusUpdater := services.NewStatusUpdater(statusStore, logr)

	pushProvider := services.NewWebPushProvider(services.VAPIDKeys{
		PublicKey:  cfg.VAPIDPublicKey,
		PrivateKey: cfg.VAPIDPrivateKey,
		Subject:    cfg.VAPIDSubject,
	}, cfg.PushTTL, cfg.ProviderTimeout, logr)
	metricsCollector := metrics.New()

	retryCfg := retry.Config{
		MaxAttempts:    cfg.RetryMaxAttempts,
		InitialBackoff: cfg.RetryInitialBackoff,
		MaxBackoff:     cfg.RetryMaxBackoff,
	}

	processor := services.NewReminderProcessor(
		pushProvider,
		statusUpdater,
		cache,
		metricsCollector,
		logr,
		retryCfg,
		cfg.ReminderTemplate,
	)
	processor.SetTokenRemover(repository.NewTokenStore(db))

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		logr.Error("failed to connect rabbitmq", slog.Any("error", err))
		os.Exit(1)
	}
	defer conn.Close()

	republisher, err := consumer.NewPublisher(conn, cfg.ReminderQueue, cfg.DeadLetterQueue)
	if err != nil {
		logr.Error("failed to open republish channel", slog.Any("error", err))
		os.Exit(1)
	}
	defer republisher.Close()

	base := consumer.NewBaseConsumer(
		conn,
		cfg.ReminderQueue,
		cfg.DeadLetterQueue,
		cfg.PrefetchCount,
		cfg.WorkerCount,
		logr,
	)
	reminderConsumer := consumer.NewReminderConsumer(base, processor, republisher, logr, cfg.RetryMaxAttempts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := startMetricsServer(cfg.HTTPPort, metricsCollector, logr)

	if err := reminderConsumer.Start(ctx); err != nil {
		logr.Error("reminder consumer exited", slog.Any("error", err))
	}

	shutdownHTTP(httpSrv, logr)
	logr.Info("reminder consumer stopped")
}

func startMetricsServer(port string, metricsCollector *metrics.Metrics, logr *slog.Logger) *http.Server {
	if port == "" {
		port = "8082"
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsCollector.Handler())
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Error("http server error", slog.Any("error", err))
		}
	}()
	return srv
}

func shutdownHTTP(srv *http.Server, logr *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("failed to shutdown http server", slog.Any("error", err))
	}
}
