package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/ingest-pipeline/internal/adapter/push"
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
	log.Info("starting delivery dispatcher")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis", "addr", cfg.RedisAddr)

	consumerName, err := os.Hostname()
	if err != nil {
		log.Warn("could not get hostname for consumer name, using default", "error", err)
		consumerName = "dispatcher-default"
	}

	subscriber, err := queueredis.NewSubscriber(ctx, redisClient, cfg.EventStream, cfg.ConsumerGroup, consumerName, log)
	if err != nil {
		log.Error("failed to create queue subscriber", "error", err)
		os.Exit(1)
	}

	sender := push.NewSender(nil, cfg.WorkerURL, log)
	dispatchUseCase := usecase.NewDispatchDeliveriesUseCase(subscriber, sender, log, cfg.DispatchWorkers, cfg.RedeliveryMinIdle)

	ticker := time.NewTicker(cfg.DispatchInterval)
	defer ticker.Stop()

	log.Info("dispatcher started", "group", cfg.ConsumerGroup, "consumer", consumerName, "worker_url", cfg.WorkerURL)

Loop:
	for {
		select {
		case <-ticker.C:
			count, err := dispatchUseCase.DispatchBatch(ctx, cfg.DispatchBatchSize)
			if err != nil {
				log.Error("error dispatching batch", "error", err)
			} else if count > 0 {
				log.Debug("dispatched batch", "count", count)
			}
		case <-ctx.Done():
			log.Info("context cancelled, shutting down dispatcher loop")
			break Loop
		}
	}

	log.Info("dispatcher shut down gracefully")
}
