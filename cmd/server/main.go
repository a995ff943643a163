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

	"github.com/streadway/amqp"

	"github.com/GopiRanganathan/todo/internal/config"
	"github.com/GopiRanganathan/todo/internal/consumer"
	"github.com/GopiRanganathan/todo/internal/repository"
	"github.com/GopiRanganathan/todo/internal/routes"
	"github.com/GopiRanganathan/todo/internal/services"
	"github.com/GopiRanganathan/todo/pkg/logger"
	"github.com/GopiRanganathan/todo/pkg/metrics"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logr := logger.New(cfg.LogLevel)
	logr.Info("starting todo server", slog.String("app", cfg.AppName))

	db, err := repository.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		logr.Error("failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := repository.Migrate(db); err != nil {
		logr.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	todoStore := repository.NewTodoStore(db)
	tokenStore := repository.NewTokenStore(db)
	metricsCollector := metrics.New()

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		logr.Error("failed to connect rabbitmq", slog.Any("error", err))
		os.Exit(1)
	}
	defer conn.Close()

	publisher, err := consumer.NewPublisher(conn, cfg.ReminderQueue, cfg.DeadLetterQueue)
	if err != nil {
		logr.Error("failed to create reminder publisher", slog.Any("error", err))
		os.Exit(1)
	}
	defer publisher.Close()

	// Validated by LoadServer.
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := services.NewReminderScheduler(todoStore, tokenStore, publisher, metricsCollector, logr, cfg.ReminderSchedule, loc)
	if err := scheduler.Start(ctx); err != nil {
		logr.Error("failed to start reminder scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           routes.NewRouter(tokenStore, todoStore, metricsCollector, logr, time.Now()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logr.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Error("http server error", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("failed to shutdown http server", slog.Any("error", err))
	}
	scheduler.Stop()
	logr.Info("todo server stopped")
}
