package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/care-portal/internal/config"
	"github.com/jwalitptl/care-portal/internal/email"
	"github.com/jwalitptl/care-portal/internal/repository/postgres"
	"github.com/jwalitptl/care-portal/pkg/logger"
	"github.com/jwalitptl/care-portal/pkg/messaging/redis"
	"github.com/jwalitptl/care-portal/pkg/metrics"
	"github.com/jwalitptl/care-portal/pkg/retry"
	"github.com/jwalitptl/care-portal/pkg/worker"
)

const healthAddr = ":8081"

func setupHealthCheck(db *sqlx.DB, appLogger *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
	return srv
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    cfg.Logging.Console,
	})
	log.Logger = appLogger.ZL
	workerLogger := appLogger.WithFields(map[string]interface{}{"worker_id": workerID()})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		workerLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics(prometheus.DefaultRegisterer, "care_portal_worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, err := redis.NewRedisBroker(ctx, redis.DefaultConfig(cfg.Redis.URL), workerLogger, m)
	if err != nil {
		workerLogger.Fatal(err, "failed to create redis broker")
	}
	defer broker.Close()

	var notifier worker.BookingNotifier
	if cfg.SMTP.Enabled() {
		notifier = email.NewSMTPService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		workerLogger.Warn("smtp not configured, confirmation emails disabled")
	}

	outboxRepo := postgres.NewOutboxRepository(postgres.NewBaseRepository(db))

	processor, err := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		notifier,
		worker.OutboxProcessorConfig{
			BatchSize:    cfg.Outbox.BatchSize,
			PollInterval: cfg.Outbox.PollInterval,
			MaxRetries:   cfg.Outbox.MaxRetries,
			Publish:      retry.DefaultPolicy(),
		},
		workerLogger,
		m,
	)
	if err != nil {
		workerLogger.Fatal(err, "invalid outbox configuration")
	}

	cleanup := worker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.RetentionPeriod, time.Hour, workerLogger)

	health := setupHealthCheck(db, workerLogger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		workerLogger.Info("shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()
	wg.Wait()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := health.Shutdown(shutdownCtx); err != nil {
		workerLogger.Error(err, "health server shutdown")
	}
}

func workerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}
