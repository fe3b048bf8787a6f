// Package main runs the background job worker (confirmation email logging).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scanlead/backend/config"
	"github.com/scanlead/backend/internal/store"
	"github.com/scanlead/backend/internal/store/memory"
	"github.com/scanlead/backend/internal/store/postgres"
	"github.com/scanlead/backend/internal/worker"
	"github.com/scanlead/backend/pkg/database"
	"github.com/scanlead/backend/pkg/queue"
	"github.com/scanlead/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	var emailLogStore store.EmailLogStore
	switch cfg.Store.Driver {
	case "memory":
		// A worker with its own in-memory store is only useful for smoke
		// testing the queue path.
		emailLogStore = memory.New().EmailLogs()
		logger.Warn("using in-memory store: email logs are not shared with the server")
	default:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		emailLogStore = postgres.NewEmailLogStore(pool)
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewEmailProcessor(emailLogStore, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
