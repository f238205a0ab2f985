package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/config"
	"github.com/ariefcatur/go-storefront.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/logx"
	"github.com/ariefcatur/go-storefront.git/internal/notifier"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/postgres"
	"github.com/ariefcatur/go-storefront.git/internal/products"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/ariefcatur/go-storefront.git/internal/session"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := logx.New(cfg)
	if err != nil {
		slog.Error("logger", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("db connect", slog.Any("err", err))
		os.Exit(1)
	}
	defer db.Close()

	// Session slots
	var kv storage.KV
	switch cfg.StorageBackend {
	case "memory":
		kv = storage.NewMemory()
	default:
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		kv = &redisx.KV{Redis: rdb, TTL: redisx.TTLSlot}
	}

	// Kafka producer for tracking updates
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicTrackingUpdated, 1024, logger)
	prod.Start(ctx)
	fwd := &notifier.Forwarder{Producer: prod, ServiceName: cfg.ServiceName, Logger: logger}

	sessions := session.NewManager(kv, session.Config{
		Policy:    orders.ParsePolicy(cfg.OrderStatusPolicy),
		AlertTTL:  cfg.AlertTTL,
		SellerID:  cfg.DefaultSellerID,
		Logger:    logger,
		Listeners: []orders.Listener{fwd.Forward},
	})

	router := httpx.NewRouter(logger)
	(&httpx.SessionHandler{Sessions: sessions, Logger: logger}).Register(router)
	(&httpx.FunctionsHandler{Products: &products.Repo{DB: db}, Logger: logger}).Register(router)
	(&httpx.UserAlertsHandler{KV: kv, TTL: cfg.UserAlertTTL, Logger: logger}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("http listening", slog.String("addr", cfg.HTTPAddr), slog.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // no more tracking updates; flush and close the writer
	prod.WaitClosed()
}
