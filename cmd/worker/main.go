package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/afisha-events/backend/config"
	"github.com/afisha-events/backend/internal/worker"
	"github.com/afisha-events/backend/pkg/mailer"
	"github.com/afisha-events/backend/pkg/queue"
	pkgredis "github.com/afisha-events/backend/pkg/redis"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := pkgredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	jobQueue := queue.NewQueue(redisClient.Client, logger)
	m := mailer.New(cfg.Email, logger)
	if !m.Configured() {
		logger.Warn("SMTP not configured, emails will be logged and dropped")
	}

	processor := worker.NewEmailProcessor(jobQueue, m, logger)
	if err := processor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
