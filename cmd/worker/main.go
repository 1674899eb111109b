package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/ingest-pipeline/internal/adapter/api"
	"github.com/user/ingest-pipeline/internal/adapter/metrics"
	"github.com/user/ingest-pipeline/internal/adapter/redaction"
	"github.com/user/ingest-pipeline/internal/adapter/repository/postgres"
	"github.com/user/ingest-pipeline/internal/pkg/config"
	"github.com/user/ingest-pipeline/internal/pkg/logger"
	"github.com/user/ingest-pipeline/internal/usecase"

	_ "github.com/lib/pq" // postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	m := metrics.NewWorkerMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The store client is constructed once here and shared across requests;
	// no lazy global state.
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to open postgres connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	recordStore := postgres.NewRecordRepository(db, log)
	processUseCase := usecase.NewProcessEventUseCase(
		recordStore,
		redaction.NewRedactor(redaction.DefaultRules()),
		usecase.LinearCostModel(cfg.ProcessingUnitCost),
		usecase.SleepDelay,
		time.Now,
		log,
	)

	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())

	adminServer := &http.Server{
		Addr:    cfg.AdminServerAddr,
		Handler: adminMux,
	}

	go func() {
		log.Info("starting metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err)
		}
	}()

	// Write timeout must cover the worst-case simulated processing delay
	// for a max-size payload.
	workerServer := &http.Server{
		Addr:        cfg.WorkerServerAddr,
		Handler:     api.NewWorkerRouter(log, processUseCase, m),
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting worker server", "addr", workerServer.Addr)
		if err := workerServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("worker server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", "error", err)
	}
	if err := workerServer.Shutdown(shutdownCtx); err != nil {
		log.Error("worker server shutdown failed", "error", err)
	}

	log.Info("servers shut down gracefully")
}
