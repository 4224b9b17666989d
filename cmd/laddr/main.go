// Command laddr runs the betting-ladder tracker. It serves a JSON API with
// an SSE event stream, persisting ladders either to local JSON documents or
// to a redis document store.
//
// Usage:
//
//	laddr --config config.yaml
//	laddr --storage redis --redis localhost:6379
//	laddr --new (interactive create-ladder form, then exit)
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/laddr/config"
	"github.com/vadiminshakov/laddr/internal/services/tracker"
	"github.com/vadiminshakov/laddr/internal/setup"
	"github.com/vadiminshakov/laddr/internal/storage"
	"github.com/vadiminshakov/laddr/internal/storage/file"
	"github.com/vadiminshakov/laddr/internal/storage/journal"
	"github.com/vadiminshakov/laddr/internal/storage/redisstore"
	"github.com/vadiminshakov/laddr/internal/web"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	var store storage.Ladders
	switch cfg.Storage {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		defer client.Close()
		store = redisstore.New(client)
	default:
		fileStore, err := file.New(cfg.DataDir)
		if err != nil {
			logger.Fatal("init file storage", zap.Error(err))
		}
		store = fileStore
	}

	events, err := journal.New(cfg.JournalDir)
	if err != nil {
		logger.Fatal("init event journal", zap.Error(err))
	}
	defer events.Close()

	tr := tracker.New(logger, store, events, cfg.ConfirmWindow)
	defer tr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Interactive {
		if err := setup.RunCreateWizard(ctx, tr); err != nil {
			logger.Fatal("create wizard failed", zap.Error(err))
		}
		return
	}

	server := web.NewServer(cfg.ListenAddr, tr, events, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx)
	})

	logger.Info("laddr started",
		zap.String("listen", cfg.ListenAddr),
		zap.String("storage", cfg.Storage))

	if err := g.Wait(); err != nil {
		logger.Error("shutdown with error", zap.Error(err))
	}
}
