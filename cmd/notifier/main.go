package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/config"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/logx"
	"github.com/ariefcatur/go-storefront.git/internal/notifier"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	cfg.ServiceName += "-notifier"
	logger, err := logx.New(cfg)
	if err != nil {
		slog.Error("logger", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notifier.Service{
		KV:       &redisx.KV{Redis: rdb, TTL: redisx.TTLSlot},
		Dedup:    &redisx.Deduper{Redis: rdb, Service: cfg.ServiceName},
		AlertTTL: cfg.UserAlertTTL,
		Logger:   logger,
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, orders.TopicTrackingUpdated, cfg.NotifierWorkers, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("notifier consumer started",
			slog.String("group", cfg.NotifierGroup), slog.String("topic", orders.TopicTrackingUpdated), slog.Int("workers", cfg.NotifierWorkers))
		if err := cons.Start(ctx, svc.HandleTrackingUpdated); err != nil {
			logger.Error("consumer exit", slog.Any("err", err))
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down consumer")
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn("consumer did not stop in time")
	}
}
