package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/user/ingest-pipeline/internal/adapter/api"
	"github.com/user/ingest-pipeline/internal/adapter/metrics"
	queueredis "github.com/user/ingest-pipeline/internal/adapter/queue/redis"
	"github.com/user/ingest-pipeline/internal/pkg/config"
	"github.com/user/ingest-pipeline/internal/pkg/logger"
	"github.com/user/ingest-pipeline/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	m := metrics.NewIngestMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The queue client is constructed once here and shared across requests;
	// no lazy global state.
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis", "addr", cfg.RedisAddr)

	publisher := queueredis.NewPublisher(redisClient, cfg.EventStream, cfg.PublishAckWait, log, m)
	normalizer := usecase.NewNormalizer(time.Now, uuid.NewString)
	ingestUseCase := usecase.NewIngestEventUseCase(normalizer, publisher, log)

	// --- Admin & metrics server ---
	inspector := queueredis.NewInspector(redisClient, cfg.EventStream)
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.Handle("/", api.NewAdminRouter(inspector, cfg.ConsumerGroup, log))

	adminServer := &http.Server{
		Addr:    cfg.AdminServerAddr,
		Handler: adminMux,
	}

	go func() {
		log.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Ingest server ---
	ingestServer := &http.Server{
		Addr:         cfg.IngestServerAddr,
		Handler:      api.NewIngestRouter(cfg, log, ingestUseCase, m),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		log.Info("starting ingest server", "addr", ingestServer.Addr)
		if err := ingestServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("ingest server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Error("admin server shutdown failed", "error", err)
	}
	if err := ingestServer.Shutdown(shutdownCtx); err != nil {
		log.Error("ingest server shutdown failed", "error", err)
	}

	log.Info("servers shut down gracefully")
}
